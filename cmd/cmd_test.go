package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/lotcataloger/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, opts *rootOptions, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(opts)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func fixture(t *testing.T, files ...string) (uploads, catalogPath string) {
	t.Helper()
	dir := t.TempDir()
	uploads = filepath.Join(dir, "uploads")
	require.NoError(t, os.MkdirAll(uploads, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(uploads, f), []byte("img"), 0644))
	}
	return uploads, filepath.Join(dir, "catalog_output.csv")
}

var echoProvider = providers.ProviderFunc(func(ctx context.Context, c providers.Config) (string, error) {
	return "Caption\nRefined\nEnhanced", nil
})

func TestGenerateCommand(t *testing.T) {
	uploads, catalogPath := fixture(t, "1-1.jpg", "1-2.jpg", "2-1.jpg", "cover.jpg")

	out, err := run(t, &rootOptions{provider: echoProvider},
		"generate", "--uploads", uploads, "--catalog", catalogPath, "--log-level", "error")
	require.NoError(t, err, out)

	assert.Contains(t, out, "Generated descriptions for 2 lots.")
	assert.Contains(t, out, "Lot 1: 1-1.jpg, 1-2.jpg")
	assert.Contains(t, out, "Lot 2: 2-1.jpg")
	assert.Contains(t, out, "[parse] cover.jpg")

	data, err := os.ReadFile(catalogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2,2-1.jpg,https://yourwebsite.com/uploads/2-1.jpg,Caption,Refined,Enhanced")
}

func TestGenerateCommandNoImages(t *testing.T) {
	uploads, catalogPath := fixture(t, "notes.txt")

	out, err := run(t, &rootOptions{provider: echoProvider},
		"generate", "--uploads", uploads, "--catalog", catalogPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No images found in "+uploads)
}

func TestGenerateCommandRejectsBadMode(t *testing.T) {
	uploads, catalogPath := fixture(t, "1-1.jpg")

	_, err := run(t, &rootOptions{provider: echoProvider},
		"generate", "--uploads", uploads, "--catalog", catalogPath, "--mode", "shelf")
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	uploads, catalogPath := fixture(t, "4-1.jpg")
	opts := &rootOptions{provider: echoProvider}

	_, err := run(t, opts, "generate", "--uploads", uploads, "--catalog", catalogPath)
	require.NoError(t, err)

	output := filepath.Join(t.TempDir(), "catalog.yaml")
	out, err := run(t, opts, "export", "--catalog", catalogPath, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 entries to "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc struct {
		Entries []map[string]any `yaml:"entries"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "4-1.jpg", doc.Entries[0]["image_filenames"])
}

func TestExportCommandErrors(t *testing.T) {
	_, catalogPath := fixture(t)

	_, err := run(t, &rootOptions{}, "export", "--catalog", catalogPath)
	assert.ErrorContains(t, err, "--output is required")

	_, err = run(t, &rootOptions{}, "export", "--catalog", catalogPath, "--output", "catalog.xlsx")
	assert.Error(t, err)

	_, err = run(t, &rootOptions{}, "export", "--catalog", catalogPath, "--output", catalogPath)
	assert.ErrorContains(t, err, "is the catalog itself")
}

func TestInvalidLogLevel(t *testing.T) {
	_, catalogPath := fixture(t)
	_, err := run(t, &rootOptions{}, "export", "--catalog", catalogPath, "--output", "x.yaml", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}
