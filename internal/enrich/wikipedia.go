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

const defaultWikipediaBaseURL = "https://en.wikipedia.org/api/rest_v1"

// Wikipedia is a client for the Wikipedia REST page-summary API.
type Wikipedia struct {
	baseURL string
	client  http.Client
}

// NewWikipedia creates a Wikipedia client; empty baseURL means the public
// English-language API.
func NewWikipedia(baseURL string) *Wikipedia {
	if baseURL == "" {
		baseURL = defaultWikipediaBaseURL
	}
	return &Wikipedia{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.Client{Timeout: 10 * time.Second},
	}
}

// WikiSummary is the shaped page summary returned to the frontend.
type WikiSummary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	PageURL     string `json:"page_url"`
	Lang        string `json:"lang"`
}

// Summary fetches the page summary for an article title ("Alan Turing").
func (w *Wikipedia) Summary(ctx context.Context, title string) (*WikiSummary, error) {
	if title == "" {
		return nil, apperr.ErrNotFound
	}
	u := fmt.Sprintf("%s/page/summary/%s", w.baseURL, url.PathEscape(strings.ReplaceAll(title, " ", "_")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("enrich: wikipedia request: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrich: wikipedia fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("enrich: wikipedia %q: %w", title, apperr.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrich: wikipedia status %d", resp.StatusCode)
	}

	var payload struct {
		Title       string `json:"title"`
		Extract     string `json:"extract"`
		Description string `json:"description"`
		Lang        string `json:"lang"`
		Thumbnail   struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("enrich: wikipedia decode: %w", err)
	}

	return &WikiSummary{
		Title:       payload.Title,
		Extract:     payload.Extract,
		Description: payload.Description,
		Thumbnail:   payload.Thumbnail.Source,
		PageURL:     payload.ContentURLs.Desktop.Page,
		Lang:        payload.Lang,
	}, nil
}
