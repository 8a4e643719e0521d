package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
)

type deleteResponse struct {
	Message  string           `json:"message"`
	Deleted  int              `json:"deleted"`
	Failures []models.Failure `json:"failures"`
}

// HandleDelete removes every upload. Individual failures are listed in the
// response but the request itself always succeeds.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethods(w, r, http.MethodPost, http.MethodDelete) {
		return
	}

	deleted, failures := h.uploads.DeleteAll()
	if h.publisher != nil {
		for _, name := range deleted {
			if err := h.publisher.Remove(r.Context(), name); err != nil {
				slog.Error("Failed to remove published image", "filename", name, "err", err)
				failures = append(failures, models.NewFailure(models.StagePublish, name, err))
			}
		}
	}
	if failures == nil {
		failures = []models.Failure{}
	}

	h.writeJSON(w, deleteResponse{
		Message:  "All images deleted.",
		Deleted:  len(deleted),
		Failures: failures,
	})
}
