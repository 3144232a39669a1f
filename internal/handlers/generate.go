package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/nahidhasan98/git-diff-server/internal/dispatch"
	"github.com/nahidhasan98/git-diff-server/internal/errors"
	"github.com/nahidhasan98/git-diff-server/internal/models"
	"github.com/nahidhasan98/git-diff-server/internal/runner"
)

// Generate runs the requested model's script against the current diff
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeAppError(w, errors.MethodNotAllowed(r.Method))
		return
	}

	if !h.validator.IsJSONContentType(r.Header.Get("Content-Type")) {
		h.writeAppError(w, errors.InvalidRequest("Request body must be JSON", nil))
		return
	}

	// Parse request body; an empty body means "use the defaults"
	var req models.GenerateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && err != io.EOF {
		// A well-formed body whose model is not a string names no known model
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field == "model" {
			h.writeAppError(w, errors.InvalidModel())
			return
		}
		h.writeAppError(w, errors.InvalidRequest("Invalid request body", err))
		return
	}

	model := req.ModelOrDefault(dispatch.DefaultModel)

	// Validate before anything is spawned
	if appErr := h.validator.ValidateModel(model); appErr != nil {
		h.writeAppError(w, appErr)
		return
	}

	result, err := h.generator.Generate(r.Context(), model)
	if err != nil {
		h.writeAppError(w, classifyError(err))
		return
	}

	response := &models.GenerateResponse{
		Diff:    result.Diff,
		Message: result.Message,
		Model:   result.Model,
	}
	h.writeJSON(w, response, http.StatusOK)
}

// classifyError maps dispatcher errors onto the HTTP error taxonomy
func classifyError(err error) *errors.AppError {
	var exitErr *runner.ExitError
	switch {
	case stderrors.Is(err, dispatch.ErrUnknownModel):
		return errors.InvalidModel()
	case stderrors.As(err, &exitErr):
		return errors.ScriptFailed(exitErr.Stderr, err)
	default:
		return errors.InternalError(err)
	}
}
