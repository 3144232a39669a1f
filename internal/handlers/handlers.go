package handlers

import (
	"context"

	"github.com/nahidhasan98/git-diff-server/internal/dispatch"
	"github.com/nahidhasan98/git-diff-server/internal/logger"
	"github.com/nahidhasan98/git-diff-server/internal/validation"
)

// maxBodyBytes caps the generate request body
const maxBodyBytes = 1 << 20

// Generator produces commit messages for a model
type Generator interface {
	Generate(ctx context.Context, model string) (*dispatch.Result, error)
	Models() []string
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	generator Generator
	log       *logger.Logger
	validator *validation.Validator
	uiPath    string
}

// New creates a new handler instance
func New(generator Generator, log *logger.Logger, uiPath string) *Handler {
	return &Handler{
		generator: generator,
		log:       log,
		validator: validation.New(generator.Models()),
		uiPath:    uiPath,
	}
}
