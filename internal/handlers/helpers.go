package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/nahidhasan98/git-diff-server/internal/errors"
	"github.com/nahidhasan98/git-diff-server/internal/models"
)

// writeJSON buffers the encoding; a value that cannot be encoded becomes a
// 500 rather than a truncated response.
func (h *Handler) writeJSON(w http.ResponseWriter, body interface{}, status int) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		h.log.Error("Failed to encode JSON response", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.Debugf("Client went away before the response was written: %v", err)
	}
}

// writeAppError renders appErr as {error, code, details}. Server-side
// failures are logged at error level; client mistakes only at debug.
func (h *Handler) writeAppError(w http.ResponseWriter, appErr *errors.AppError) {
	log := h.log.With("error_code", appErr.Code).With("status_code", appErr.StatusCode)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error(appErr.Message, appErr.Err)
	} else {
		log.Debug(appErr.Message)
	}

	h.writeJSON(w, &models.ErrorResponse{
		Error:   appErr.Message,
		Code:    string(appErr.Code),
		Details: appErr.Details,
	}, appErr.StatusCode)
}
