package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/lotcataloger/internal/catalog"
	"github.com/lehigh-university-libraries/lotcataloger/internal/cataloging"
	"github.com/lehigh-university-libraries/lotcataloger/internal/config"
	"github.com/lehigh-university-libraries/lotcataloger/internal/images"
	"github.com/lehigh-university-libraries/lotcataloger/internal/publish"
	"github.com/lehigh-university-libraries/lotcataloger/internal/storage"
)

type Handler struct {
	cfg       *config.Config
	service   *cataloging.Service
	store     catalog.Store
	uploads   *storage.UploadStore
	publisher publish.Publisher
	fetcher   *images.Fetcher
}

// New builds the HTTP handlers. publisher may be nil.
func New(cfg *config.Config, service *cataloging.Service, store catalog.Store, uploads *storage.UploadStore, publisher publish.Publisher) *Handler {
	return &Handler{
		cfg:       cfg,
		service:   service,
		store:     store,
		uploads:   uploads,
		publisher: publisher,
		fetcher:   images.NewFetcher(cfg.MaxUploadBytes),
	}
}

// Routes registers every endpoint on a new mux
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", h.HandleUpload)
	mux.HandleFunc("/generate-catalog", h.HandleGenerate)
	mux.HandleFunc("/download-csv", h.HandleDownload)
	mux.HandleFunc("/delete-images", h.HandleDelete)
	mux.HandleFunc("/static/", h.HandleStatic)
	mux.HandleFunc("/uploads/", h.HandleUploads)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	mux.HandleFunc("/", h.HandleRoot)
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message)
	}
	h.writeJSONStatus(w, code, map[string]string{"error": message})
}

func (h *Handler) allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}
