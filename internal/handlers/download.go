package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/lotcataloger/internal/catalog"
)

const downloadFilename = "catalog_output.csv"

func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	var buf bytes.Buffer
	if err := h.store.WriteCSV(r.Context(), &buf); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.writeError(w, "CSV file not found", http.StatusNotFound)
			return
		}
		h.writeError(w, "Failed to read catalog: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadFilename+`"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Unable to write catalog download", "err", err)
	}
}
