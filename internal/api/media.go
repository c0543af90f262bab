package api

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/halvard/muninn/internal/vault"
)

// MediaHandler serves non-markdown vault files (images, audio) referenced by
// notes. Lookups go through the scanned corpus first so a bare filename
// resolves no matter which folder it lives in.
type MediaHandler struct {
	snapshot  *vault.Snapshot
	vaultRoot string
}

// NewMediaHandler creates a handler rooted at the vault directory.
func NewMediaHandler(snapshot *vault.Snapshot, vaultRoot string) *MediaHandler {
	return &MediaHandler{snapshot: snapshot, vaultRoot: vaultRoot}
}

// ServeFile handles GET /media/*.
func (h *MediaHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	name, err := url.PathUnescape(raw)
	if err != nil {
		name = raw
	}
	if name == "" {
		http.Error(w, "filename is required", http.StatusBadRequest)
		return
	}

	rel := name
	if mapped, ok := h.snapshot.Corpus().MediaFiles[filepath.Base(name)]; ok {
		rel = mapped
	}

	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) || strings.Contains(cleaned, "..") {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	abs := filepath.Join(h.vaultRoot, cleaned)
	if !strings.HasPrefix(abs, h.vaultRoot+string(os.PathSeparator)) {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	if info, statErr := os.Stat(abs); statErr != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
