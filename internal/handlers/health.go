package handlers

import (
	"net/http"
	"time"

	"github.com/nahidhasan98/git-diff-server/internal/dispatch"
	"github.com/nahidhasan98/git-diff-server/internal/errors"
	"github.com/nahidhasan98/git-diff-server/internal/models"
)

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := &models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Unix(),
	}

	h.writeJSON(w, response, http.StatusOK)
}

// ListModels returns the models the generate endpoint accepts
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.writeAppError(w, errors.MethodNotAllowed(r.Method))
		return
	}

	h.writeJSON(w, &models.ModelsResponse{
		Models:  h.generator.Models(),
		Default: dispatch.DefaultModel,
	}, http.StatusOK)
}
