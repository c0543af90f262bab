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

const defaultBooksBaseURL = "https://www.googleapis.com/books/v1"

// Books is a client for the Google Books volumes API.
type Books struct {
	baseURL string
	client  http.Client
}

// NewBooks creates a Google Books client; empty baseURL means the public API.
func NewBooks(baseURL string) *Books {
	if baseURL == "" {
		baseURL = defaultBooksBaseURL
	}
	return &Books{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.Client{Timeout: 10 * time.Second},
	}
}

// BookInfo is the subset of volume metadata the notes UI cares about.
type BookInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	PublishedDate string   `json:"publishedDate"`
	Year          string   `json:"year"`
	Description   string   `json:"description"`
	PageCount     int      `json:"pageCount"`
	Thumbnail     string   `json:"thumbnail"`
}

// Lookup searches volumes by title and returns the first (most relevant)
// result.
func (b *Books) Lookup(ctx context.Context, title string) (*BookInfo, error) {
	if title == "" {
		return nil, apperr.ErrNotFound
	}
	u := fmt.Sprintf("%s/volumes?q=%s", b.baseURL, url.QueryEscape(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("enrich: books request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrich: books fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrich: books status %d", resp.StatusCode)
	}

	var payload struct {
		Items []struct {
			VolumeInfo struct {
				Title         string   `json:"title"`
				Authors       []string `json:"authors"`
				PublishedDate string   `json:"publishedDate"`
				Description   string   `json:"description"`
				PageCount     int      `json:"pageCount"`
				ImageLinks    struct {
					Thumbnail      string `json:"thumbnail"`
					SmallThumbnail string `json:"smallThumbnail"`
				} `json:"imageLinks"`
			} `json:"volumeInfo"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("enrich: books decode: %w", err)
	}
	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("enrich: books %q: %w", title, apperr.ErrNotFound)
	}

	vi := payload.Items[0].VolumeInfo
	info := &BookInfo{
		Title:         vi.Title,
		Authors:       vi.Authors,
		PublishedDate: vi.PublishedDate,
		Description:   vi.Description,
		PageCount:     vi.PageCount,
		Thumbnail:     vi.ImageLinks.Thumbnail,
	}
	if info.Thumbnail == "" {
		info.Thumbnail = vi.ImageLinks.SmallThumbnail
	}
	if i := strings.Index(vi.PublishedDate, "-"); i > 0 {
		info.Year = vi.PublishedDate[:i]
	} else {
		info.Year = vi.PublishedDate
	}
	return info, nil
}
