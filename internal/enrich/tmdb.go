// Package enrich looks up external metadata for media notes: TMDb for
// movies and TV, Google Books for book notes, Wikipedia for article notes.
// Each client is a thin HTTP wrapper; lookups are best-effort and a miss is
// apperr.ErrNotFound, never a fabricated record.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/halvard/muninn/internal/apperr"
)

const defaultTMDBBaseURL = "https://api.themoviedb.org/3"

// TMDB is a client for The Movie Database API.
type TMDB struct {
	apiKey  string
	baseURL string
	client  http.Client
}

// NewTMDB creates a TMDb client. baseURL is overridable for tests; empty
// means the public API.
func NewTMDB(apiKey, baseURL string) *TMDB {
	if baseURL == "" {
		baseURL = defaultTMDBBaseURL
	}
	return &TMDB{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.Client{Timeout: 10 * time.Second},
	}
}

// Details resolves a title slug (e.g. "the-conversation") to full TMDb
// metadata: search by title first, then fetch the top result by id.
// mediaType is "movie" or "tv".
func (t *TMDB) Details(ctx context.Context, mediaType, titleSlug string) (map[string]any, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("enrich: tmdb api key not configured")
	}
	title := strings.ReplaceAll(titleSlug, "-", " ")

	id, err := t.searchID(ctx, mediaType, title)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s/%d?api_key=%s&append_to_response=content_ratings,genres",
		t.baseURL, mediaType, id, url.QueryEscape(t.apiKey))
	var details map[string]any
	if err := t.getJSON(ctx, u, &details); err != nil {
		return nil, err
	}
	return details, nil
}

func (t *TMDB) searchID(ctx context.Context, mediaType, title string) (int64, error) {
	u := fmt.Sprintf("%s/search/%s?api_key=%s&query=%s",
		t.baseURL, mediaType, url.QueryEscape(t.apiKey), url.QueryEscape(title))

	var payload struct {
		Results []struct {
			ID int64 `json:"id"`
		} `json:"results"`
	}
	if err := t.getJSON(ctx, u, &payload); err != nil {
		return 0, err
	}
	if len(payload.Results) == 0 {
		return 0, fmt.Errorf("enrich: tmdb search %q: %w", title, apperr.ErrNotFound)
	}
	return payload.Results[0].ID, nil
}

func (t *TMDB) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("enrich: tmdb request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("enrich: tmdb fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return apperr.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("enrich: tmdb status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("enrich: tmdb decode: %w", err)
	}
	return nil
}
