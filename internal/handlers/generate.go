package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lehigh-university-libraries/lotcataloger/internal/cataloging"
)

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethods(w, r, http.MethodPost) {
		return
	}

	result, err := h.service.Generate(r.Context())
	switch {
	case errors.Is(err, cataloging.ErrUploadDirMissing):
		h.writeError(w, fmt.Sprintf("Uploads folder '%s' does not exist.", h.cfg.UploadDir), http.StatusNotFound)
		return
	case errors.Is(err, cataloging.ErrNoImages):
		h.writeJSON(w, map[string]string{"message": "No images found in uploads folder."})
		return
	case err != nil:
		h.writeError(w, "Failed to generate catalog: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, result)
}
