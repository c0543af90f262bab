package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/halvard/muninn/internal/assist"
	"github.com/halvard/muninn/internal/enrich"
	"github.com/halvard/muninn/internal/noteservice"
	"github.com/halvard/muninn/internal/vault"
)

// Deps bundles everything the API router needs. Chat, Enrich clients, and
// SSEHandler may be nil; their routes degrade or are omitted.
type Deps struct {
	Notes      *noteservice.Service
	Chat       *assist.Service
	Snapshot   *vault.Snapshot
	TMDB       *enrich.TMDB
	Books      *enrich.Books
	Wikipedia  *enrich.Wikipedia
	SSEHandler http.Handler
	VaultRoot  string
}

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(d Deps, authEnabled bool, token string) chi.Router {
	h := NewHandler(d.Notes)
	vh := NewVaultHandler(d.Snapshot)
	eh := NewEnrichHandler(d.TMDB, d.Books, d.Wikipedia)
	ah := NewAttachmentHandler(d.VaultRoot)
	mh := NewMediaHandler(d.Snapshot, d.VaultRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Search.
	r.Get("/search", h.Search)

	// Chat (SSE answer stream).
	if d.Chat != nil {
		ch := NewChatHandler(d.Chat)
		r.Get("/chat", ch.Chat)
	}

	// Vault status and profile.
	r.Get("/vault", vh.Status)
	r.Post("/vault/refresh", vh.Refresh)
	r.Get("/vault/profile", vh.Profile)

	// External catalog lookups.
	r.Get("/details/tmdb/{mediaType}/{slug}", eh.TMDBDetails)
	r.Get("/details/book/{title}", eh.BookDetails)
	r.Get("/details/wikipedia/{slug}", eh.WikipediaDetails)

	// Vault media files.
	r.Get("/media/*", mh.ServeFile)

	// Attachments.
	r.Post("/attachments", ah.Upload)
	r.Get("/attachments/{filename}", ah.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if d.SSEHandler != nil {
		r.Get("/events", d.SSEHandler.ServeHTTP)
	}

	return r
}
