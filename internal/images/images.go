package images

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrDirMissing is returned by Scan when the upload directory does not exist
var ErrDirMissing = errors.New("image directory does not exist")

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// IsImage reports whether the filename has one of the supported image extensions
func IsImage(filename string) bool {
	_, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ContentType returns the MIME type for a supported image, or application/octet-stream
func ContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Scan lists the image files directly inside dir in directory listing order
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirMissing, dir)
		}
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Dimensions decodes just the image header to get its size
func Dimensions(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	img, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}

	return img.Width, img.Height, nil
}
