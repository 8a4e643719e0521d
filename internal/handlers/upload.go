package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
	"github.com/lehigh-university-libraries/lotcataloger/internal/storage"
)

const multipartMemory = 32 << 20

type uploadResponse struct {
	Message  string               `json:"message"`
	Files    []*storage.SavedFile `json:"files"`
	Failures []models.Failure     `json:"failures"`
}

// urlUpload imports images by URL instead of multipart form data
type urlUpload struct {
	ImageURL  string   `json:"image_url"`
	ImageURLs []string `json:"image_urls"`
	Filename  string   `json:"filename"`
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethods(w, r, http.MethodPost) {
		return
	}

	// Check if this is a JSON request with image URLs
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.writeError(w, "Failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	headers := slices.Concat(r.MultipartForm.File["files"], r.MultipartForm.File["file"])
	if len(headers) == 0 {
		h.writeError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	resp := newUploadResponse()
	tooLarge := false
	for _, header := range headers {
		saved, err := h.saveUpload(header)
		if err != nil {
			tooLarge = tooLarge || errors.Is(err, storage.ErrTooLarge)
			slog.Error("Failed to save upload", "filename", header.Filename, "err", err)
			resp.Failures = append(resp.Failures, models.NewFailure(models.StageUpload, header.Filename, err))
			continue
		}
		h.accept(r, resp, saved)
	}

	h.finishUpload(w, resp, http.StatusInternalServerError, tooLarge)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request urlUpload
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	urls := request.ImageURLs
	if request.ImageURL != "" {
		urls = append(urls, request.ImageURL)
	}
	if len(urls) == 0 {
		h.writeError(w, "image_url or image_urls is required", http.StatusBadRequest)
		return
	}
	if request.Filename != "" && len(urls) > 1 {
		h.writeError(w, "filename can only be set for a single image_url", http.StatusBadRequest)
		return
	}

	resp := newUploadResponse()
	tooLarge := false
	for _, u := range urls {
		fetched, err := h.fetcher.Fetch(r.Context(), u, request.Filename)
		if err != nil {
			tooLarge = tooLarge || errors.Is(err, storage.ErrTooLarge)
			slog.Error("Failed to fetch image", "url", u, "err", err)
			resp.Failures = append(resp.Failures, models.NewFailure(models.StageUpload, u, err))
			continue
		}
		saved, err := h.uploads.Save(fetched.Filename, bytes.NewReader(fetched.Data))
		if err != nil {
			tooLarge = tooLarge || errors.Is(err, storage.ErrTooLarge)
			slog.Error("Failed to save fetched image", "url", u, "err", err)
			resp.Failures = append(resp.Failures, models.NewFailure(models.StageUpload, u, err))
			continue
		}
		h.accept(r, resp, saved)
	}

	h.finishUpload(w, resp, http.StatusBadGateway, tooLarge)
}

func newUploadResponse() *uploadResponse {
	return &uploadResponse{
		Files:    []*storage.SavedFile{},
		Failures: []models.Failure{},
	}
}

// accept records a saved file and mirrors it when a publisher is configured
func (h *Handler) accept(r *http.Request, resp *uploadResponse, saved *storage.SavedFile) {
	resp.Files = append(resp.Files, saved)
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Put(r.Context(), saved.Filename, h.uploads.Path(saved.Filename)); err != nil {
		slog.Error("Failed to publish upload", "filename", saved.Filename, "err", err)
		resp.Failures = append(resp.Failures, models.NewFailure(models.StagePublish, saved.Filename, err))
	}
}

func (h *Handler) finishUpload(w http.ResponseWriter, resp *uploadResponse, status int, tooLarge bool) {
	if len(resp.Files) == 0 {
		if tooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		resp.Message = "No files were uploaded."
		h.writeJSONStatus(w, status, resp)
		return
	}

	resp.Message = fmt.Sprintf("Uploaded %d files.", len(resp.Files))
	h.writeJSON(w, resp)
}

func (h *Handler) saveUpload(header *multipart.FileHeader) (*storage.SavedFile, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	return h.uploads.Save(header.Filename, file)
}
