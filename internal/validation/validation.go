package validation

import (
	"strings"

	"github.com/nahidhasan98/git-diff-server/internal/errors"
)

// maxModelLength caps the model name accepted from clients
const maxModelLength = 64

// Validator provides validation methods
type Validator struct {
	models map[string]bool
}

// New creates a new validator that accepts the given model names
func New(models []string) *Validator {
	allowed := make(map[string]bool, len(models))
	for _, m := range models {
		allowed[m] = true
	}
	return &Validator{models: allowed}
}

// ValidateModel checks model against the closed set of known models.
// Matching is exact: no trimming or case folding.
func (v *Validator) ValidateModel(model string) *errors.AppError {
	if len(model) > maxModelLength || !v.models[model] {
		return errors.InvalidModel()
	}
	return nil
}

// IsJSONContentType reports whether a Content-Type header is acceptable for
// a JSON body. An empty header is tolerated.
func (v *Validator) IsJSONContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	mediaType = strings.ToLower(mediaType)
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") || mediaType == "text/plain"
}
