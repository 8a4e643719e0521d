package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/lehigh-university-libraries/lotcataloger/internal/images"
	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
)

var (
	ErrInvalidName = errors.New("invalid upload filename")
	ErrTooLarge    = images.ErrTooLarge
)

// SavedFile describes an upload written to disk
type SavedFile struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// UploadStore keeps uploaded images in a single local directory.
// Files are stored under the client's filename; a second upload with the
// same name replaces the first.
type UploadStore struct {
	dir      string
	maxBytes int64
	mu       sync.Mutex
}

// New returns a store rooted at dir. maxBytes <= 0 disables the size limit.
func New(dir string, maxBytes int64) *UploadStore {
	return &UploadStore{dir: dir, maxBytes: maxBytes}
}

// Dir returns the upload directory
func (s *UploadStore) Dir() string {
	return s.dir
}

// Path returns where filename is stored
func (s *UploadStore) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// Save writes r under the base name of filename
func (s *UploadStore) Save(filename string, r io.Reader) (*SavedFile, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." || name == ".." || name == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	size, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, name, s.maxBytes)
	}

	dst := s.Path(name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	saved := &SavedFile{Filename: name, Size: size}
	if images.IsImage(name) {
		width, height, err := images.Dimensions(dst)
		if err != nil {
			slog.Warn("Failed to get image dimensions", "filename", name, "err", err)
		} else {
			saved.Width, saved.Height = width, height
		}
	}

	slog.Info("Image saved", "filename", name, "size", size)
	return saved, nil
}

// List returns the names of the regular files in the upload directory
func (s *UploadStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// DeleteAll removes every file in the upload directory. Files that cannot be
// removed are logged and returned as failures; they never stop the sweep.
func (s *UploadStore) DeleteAll() ([]string, []models.Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.List()
	if err != nil {
		slog.Error("Failed to list uploads for deletion", "dir", s.dir, "err", err)
		return nil, []models.Failure{models.NewFailure(models.StageDelete, s.dir, err)}
	}

	var deleted []string
	var failures []models.Failure
	for _, name := range names {
		if err := os.Remove(s.Path(name)); err != nil {
			slog.Error("Failed to delete upload", "filename", name, "err", err)
			failures = append(failures, models.NewFailure(models.StageDelete, name, err))
			continue
		}
		deleted = append(deleted, name)
	}

	slog.Info("Uploads deleted", "deleted", len(deleted), "failed", len(failures))
	return deleted, failures
}
