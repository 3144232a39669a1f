package dispatch

import (
	"errors"
	"path/filepath"
)

// DefaultModel is used when a request does not name one.
const DefaultModel = "gemini"

// ErrUnknownModel is returned for a model with no script.
var ErrUnknownModel = errors.New("unknown model")

// DefaultScripts maps each model to its script file name.
var DefaultScripts = map[string]string{
	"gpt4":     "git_diff_to_gpt4.sh",
	"groq":     "git_diff_to_groq.sh",
	"deepseek": "git_diff_to_deepseek.sh",
	"gemini":   "git_diff_to_gemini.sh",
}

// modelOrder fixes the listing order of the built-in models.
var modelOrder = []string{"gpt4", "groq", "deepseek", "gemini"}

// Catalog is the immutable model→script mapping.
type Catalog struct {
	scripts map[string]string
	models  []string
}

// NewCatalog resolves DefaultScripts against dir. A relative dir is made
// absolute first: exec treats a bare file name as a PATH lookup.
func NewCatalog(dir string) *Catalog {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	scripts := make(map[string]string, len(DefaultScripts))
	for model, name := range DefaultScripts {
		scripts[model] = filepath.Join(dir, name)
	}

	models := make([]string, len(modelOrder))
	copy(models, modelOrder)

	return &Catalog{scripts: scripts, models: models}
}

// Script returns the script path for model.
func (c *Catalog) Script(model string) (string, error) {
	path, ok := c.scripts[model]
	if !ok {
		return "", ErrUnknownModel
	}
	return path, nil
}

// Models returns the recognized model keys.
func (c *Catalog) Models() []string {
	out := make([]string, len(c.models))
	copy(out, c.models)
	return out
}
