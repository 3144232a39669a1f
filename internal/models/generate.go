package models

// GenerateRequest represents the request payload for generating a commit message
type GenerateRequest struct {
	// Model is nil when the field is absent, so an explicit "" is still
	// rejected rather than defaulted.
	Model *string `json:"model,omitempty"`
}

// ModelOrDefault returns the requested model, or def when none was given
func (r *GenerateRequest) ModelOrDefault(def string) string {
	if r == nil || r.Model == nil {
		return def
	}
	return *r.Model
}

// GenerateResponse carries the diff and the generated commit message
type GenerateResponse struct {
	Diff    string `json:"diff"`
	Message string `json:"message"`
	Model   string `json:"model"`
}
