package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SPAHandler serves a built single-page frontend.
// Paths that do not name a file get index.html so client-side routes work.
type SPAHandler struct {
	dir   string
	files http.Handler
}

// NewSPAHandler creates a handler serving the bundle in dir.
func NewSPAHandler(dir string) *SPAHandler {
	return &SPAHandler{
		dir:   dir,
		files: http.FileServer(http.Dir(dir)),
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusNotFound, CodeNotFound, "Resource not found")
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if name != "/" {
		info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(name)))
		if err == nil && !info.IsDir() {
			h.files.ServeHTTP(w, r)
			return
		}
		// Missing assets are real 404s, not routes.
		if strings.Contains(path.Base(name), ".") {
			writeError(w, http.StatusNotFound, CodeNotFound, "Resource not found")
			return
		}
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
}
