package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/halvard/muninn/internal/apperr"
	"github.com/halvard/muninn/internal/enrich"
)

// EnrichHandler proxies external catalog lookups (TMDb, Google Books,
// Wikipedia) for media notes. Clients may be nil when unconfigured.
type EnrichHandler struct {
	tmdb *enrich.TMDB
	bks  *enrich.Books
	wiki *enrich.Wikipedia
}

// NewEnrichHandler creates a new EnrichHandler. Any client may be nil; its
// endpoint then answers 503.
func NewEnrichHandler(tmdb *enrich.TMDB, bks *enrich.Books, wiki *enrich.Wikipedia) *EnrichHandler {
	return &EnrichHandler{tmdb: tmdb, bks: bks, wiki: wiki}
}

// TMDBDetails handles GET /api/details/tmdb/{mediaType}/{slug}.
//
//	@Summary		TMDb details for a movie or TV note
//	@Tags			enrich
//	@Produce		json
//	@Param			mediaType	path	string	true	"movie or tv"
//	@Param			slug		path	string	true	"Title slug"
//	@Success		200	{object}	map[string]any
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/details/tmdb/{mediaType}/{slug} [get]
func (h *EnrichHandler) TMDBDetails(w http.ResponseWriter, r *http.Request) {
	if h.tmdb == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("tmdb lookup not configured"))
		return
	}
	mediaType := chi.URLParam(r, "mediaType")
	if mediaType != "movie" && mediaType != "tv" {
		writeJSON(w, http.StatusBadRequest, errorBody("mediaType must be movie or tv"))
		return
	}
	slug := pathParam(r, "slug")
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	details, err := h.tmdb.Details(r.Context(), mediaType, slug)
	if err != nil {
		writeEnrichError(w, "tmdb", err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// BookDetails handles GET /api/details/book/{title}.
//
//	@Summary		Google Books details for a book note
//	@Tags			enrich
//	@Produce		json
//	@Param			title	path	string	true	"Book title"
//	@Success		200	{object}	enrich.BookInfo
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/details/book/{title} [get]
func (h *EnrichHandler) BookDetails(w http.ResponseWriter, r *http.Request) {
	if h.bks == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("book lookup not configured"))
		return
	}
	title := pathParam(r, "title")
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	info, err := h.bks.Lookup(r.Context(), title)
	if err != nil {
		writeEnrichError(w, "book", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// WikipediaDetails handles GET /api/details/wikipedia/{slug}.
//
//	@Summary		Wikipedia summary for a wiki note
//	@Tags			enrich
//	@Produce		json
//	@Param			slug	path	string	true	"Article title slug"
//	@Success		200	{object}	enrich.WikiSummary
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/details/wikipedia/{slug} [get]
func (h *EnrichHandler) WikipediaDetails(w http.ResponseWriter, r *http.Request) {
	if h.wiki == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("wikipedia lookup not configured"))
		return
	}
	slug := pathParam(r, "slug")
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	summary, err := h.wiki.Summary(r.Context(), slug)
	if err != nil {
		writeEnrichError(w, "wikipedia", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func writeEnrichError(w http.ResponseWriter, kind string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	slog.Error("enrich lookup failed", slog.String("kind", kind), slog.String("error", err.Error()))
	writeJSON(w, http.StatusBadGateway, errorBody("upstream lookup failed"))
}
