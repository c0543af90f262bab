package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halvard/muninn/internal/apperr"
)

func TestTMDB_Details(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			if got := r.URL.Query().Get("query"); got != "the conversation" {
				t.Errorf("query = %q", got)
			}
			fmt.Fprint(w, `{"results":[{"id":592}]}`)
		case "/movie/592":
			fmt.Fprint(w, `{"id":592,"title":"The Conversation"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewTMDB("key", srv.URL)
	details, err := c.Details(context.Background(), "movie", "the-conversation")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if details["title"] != "The Conversation" {
		t.Errorf("details = %v", details)
	}
}

func TestTMDB_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	_, err := NewTMDB("key", srv.URL).Details(context.Background(), "movie", "nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTMDB_MissingKey(t *testing.T) {
	if _, err := NewTMDB("", "").Details(context.Background(), "movie", "x"); err == nil {
		t.Error("missing key must error")
	}
}

func TestBooks_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"items":[{"volumeInfo":{
			"title":"The 48 Laws of Power",
			"authors":["Robert Greene"],
			"publishedDate":"2000-09-01",
			"pageCount":452,
			"imageLinks":{"smallThumbnail":"small.jpg"}
		}}]}`)
	}))
	defer srv.Close()

	info, err := NewBooks(srv.URL).Lookup(context.Background(), "The 48 Laws of Power")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info.Title != "The 48 Laws of Power" || info.Year != "2000" {
		t.Errorf("info = %+v", info)
	}
	if info.Thumbnail != "small.jpg" {
		t.Errorf("thumbnail fallback = %q", info.Thumbnail)
	}
}

func TestBooks_NoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	_, err := NewBooks(srv.URL).Lookup(context.Background(), "ghost title")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWikipedia_Summary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page/summary/Alan_Turing" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"title":"Alan Turing",
			"extract":"English mathematician.",
			"lang":"en",
			"thumbnail":{"source":"turing.jpg"},
			"content_urls":{"desktop":{"page":"https://en.wikipedia.org/wiki/Alan_Turing"}}
		}`)
	}))
	defer srv.Close()

	sum, err := NewWikipedia(srv.URL).Summary(context.Background(), "Alan Turing")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Title != "Alan Turing" || sum.Thumbnail != "turing.jpg" {
		t.Errorf("summary = %+v", sum)
	}
}

func TestWikipedia_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewWikipedia(srv.URL).Summary(context.Background(), "Nobody")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
