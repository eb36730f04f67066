package http

import (
	"embed"
	"mime"
	"net/http"
	"path"
	"strconv"
)

//go:embed static
var staticFiles embed.FS

// staticMaxAge is how long browsers may cache the page assets, in seconds (three days).
const staticMaxAge = 259200

var staticRoutes = map[string]string{
	"/":           "static/index.html",
	"/index.html": "static/index.html",
	"/index.js":   "static/index.js",
	"/index.css":  "static/index.css",
}

// HandleStatic serves the embedded web page and its assets.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name, ok := staticRoutes[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, err := staticFiles.ReadFile(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(staticMaxAge))
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(data)
}
