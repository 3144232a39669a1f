package handlers

import (
	"net/http"
	"os"

	"github.com/nahidhasan98/git-diff-server/internal/errors"
)

// Index serves the static UI page at "/"
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.writeAppError(w, errors.NotFound("Not found"))
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		h.writeAppError(w, errors.MethodNotAllowed(r.Method))
		return
	}

	info, err := os.Stat(h.uiPath)
	if err != nil || info.IsDir() {
		h.log.Warnf("UI asset not available at %s", h.uiPath)
		h.writeAppError(w, errors.NotFound("UI not found"))
		return
	}

	http.ServeFile(w, r, h.uiPath)
}
