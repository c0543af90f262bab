package api

import (
	"log/slog"
	"net/http"

	"github.com/halvard/muninn/internal/retrieval"
	"github.com/halvard/muninn/internal/vault"
)

// VaultHandler exposes the scanned corpus: status, manual refresh, and the
// derived user profile.
type VaultHandler struct {
	snapshot *vault.Snapshot
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(snapshot *vault.Snapshot) *VaultHandler {
	return &VaultHandler{snapshot: snapshot}
}

// Status handles GET /api/vault.
//
//	@Summary		Vault status: note counts, folders, last scan time
//	@Tags			vault
//	@Produce		json
//	@Success		200	{object}	VaultStatusResponse
//	@Security		BearerAuth
//	@Router			/vault [get]
func (h *VaultHandler) Status(w http.ResponseWriter, r *http.Request) {
	corpus := h.snapshot.Corpus()
	writeJSON(w, http.StatusOK, VaultStatusResponse{
		NoteCount:  len(corpus.Notes),
		MediaCount: len(corpus.MediaFiles),
		Folders:    corpus.Folders,
		ScannedAt:  h.snapshot.ScannedAt(),
	})
}

// Refresh handles POST /api/vault/refresh.
//
//	@Summary		Force a rescan of the vault
//	@Tags			vault
//	@Produce		json
//	@Success		200	{object}	VaultStatusResponse
//	@Security		BearerAuth
//	@Router			/vault/refresh [post]
func (h *VaultHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	corpus := h.snapshot.Refresh()
	slog.Info("vault refreshed", slog.Int("notes", len(corpus.Notes)))
	writeJSON(w, http.StatusOK, VaultStatusResponse{
		NoteCount:  len(corpus.Notes),
		MediaCount: len(corpus.MediaFiles),
		Folders:    corpus.Folders,
		ScannedAt:  h.snapshot.ScannedAt(),
	})
}

// Profile handles GET /api/vault/profile.
//
//	@Summary		Derived user profile from the corpus
//	@Tags			vault
//	@Produce		json
//	@Success		200	{object}	retrieval.UserProfile
//	@Security		BearerAuth
//	@Router			/vault/profile [get]
func (h *VaultHandler) Profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, retrieval.BuildProfile(h.snapshot.Notes()))
}
