package server

import (
	"net/http"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// PreviewPrefix is the route preview files are served under.
const PreviewPrefix = "/preview/"

type previewEntry struct {
	path     string
	mimeType string
}

// PreviewHandler serves registered local files under revocable token URLs.
//
// Implements the [Handler] interface for registration with a [Router].
type PreviewHandler struct {
	mu      sync.RWMutex
	baseURL string
	entries map[string]previewEntry
}

// NewPreviewHandler creates a handler whose URLs are rooted at baseURL.
func NewPreviewHandler(baseURL string) *PreviewHandler {
	return &PreviewHandler{
		baseURL: strings.TrimRight(baseURL, "/"),
		entries: make(map[string]previewEntry),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *PreviewHandler) Routes() []string {
	return []string{PreviewPrefix}
}

// SetBaseURL changes the root of URLs issued from now on.
func (h *PreviewHandler) SetBaseURL(baseURL string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.baseURL = strings.TrimRight(baseURL, "/")
}

// Register issues a new URL for the file at p.
func (h *PreviewHandler) Register(p, mimeType string) (string, error) {
	token := uuid.NewString()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[token] = previewEntry{path: p, mimeType: mimeType}
	return h.baseURL + PreviewPrefix + token, nil
}

// Revoke invalidates a URL issued by Register. Unknown URLs are ignored.
func (h *PreviewHandler) Revoke(url string) {
	token := path.Base(url)

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.entries, token)
}

// Active returns the number of live URLs.
func (h *PreviewHandler) Active() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// ServeHTTP streams the file behind the token, with range support for media players.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := strings.TrimPrefix(r.URL.Path, PreviewPrefix)

	h.mu.RLock()
	entry, ok := h.entries[token]
	h.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(entry.path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "Failed to stat file", http.StatusInternalServerError)
		return
	}

	if entry.mimeType != "" {
		w.Header().Set("Content-Type", entry.mimeType)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
