package handlers

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/static/index.html", http.StatusFound)
}

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/static/")
	if name == "" {
		name = "index.html"
	}

	// Prevent directory traversal attacks
	if strings.Contains(name, "..") {
		h.writeError(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasSuffix(name, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(name, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(name, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}

	serveFile(w, r, filepath.Join(h.cfg.StaticDir, filepath.FromSlash(name)))
}

// HandleUploads serves uploaded images so the service can act as its own public host
func (h *Handler) HandleUploads(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/uploads/")
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		http.NotFound(w, r)
		return
	}
	serveFile(w, r, h.uploads.Path(name))
}

// serveFile serves a regular file. Unlike http.ServeFile it never redirects
// index.html requests or lists directories.
func serveFile(w http.ResponseWriter, r *http.Request, path string) {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("Unable to open file", "path", path, "err", err)
		}
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
