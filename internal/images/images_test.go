package images

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImage(t *testing.T) {
	for name, expected := range map[string]bool{
		"1-1.jpg":   true,
		"1-2.JPEG":  true,
		"2-1.png":   true,
		"3-1.Gif":   true,
		"notes.txt": false,
		"archive":   false,
		"4-1.webp":  false,
	} {
		assert.Equal(t, expected, IsImage(name), name)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("a.JPG"))
	assert.Equal(t, "image/png", ContentType("a.png"))
	assert.Equal(t, "application/octet-stream", ContentType("a.pdf"))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2-1.jpg", "1-1.png", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "9-1.jpg"), 0755))

	names, err := Scan(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1-1.png", "2-1.jpg"}, names)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrDirMissing)
}

func TestDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1-1.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 3))))
	require.NoError(t, f.Close())

	w, h, err := Dimensions(path)
	require.NoError(t, err)
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
}
