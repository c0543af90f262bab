// Package models defines the domain types for Muninn.
package models

import "time"

// Media types assigned by the parser when a note references an external
// catalog (Letterboxd, Serializd, Wikipedia).
const (
	MediaMovie = "movie"
	MediaTV    = "tv"
	MediaWiki  = "wikipedia"
)

// Note represents a parsed Markdown file in the vault. The corpus handed to
// the retrieval engine is a slice of these, materialized by the vault
// scanner; retrieval treats it as read-only.
type Note struct {
	Path                string         `json:"path"`
	Name                string         `json:"name"`
	Title               string         `json:"title,omitempty"`
	RawContent          string         `json:"rawContent"`
	ContentWithoutTags  string         `json:"contentWithoutTags"`
	Frontmatter         map[string]any `json:"frontmatter,omitempty"`
	Tags                []string       `json:"tags,omitempty"`
	Links               []string       `json:"links,omitempty"`
	Checksum            string         `json:"checksum"`
	CreatedTime         int64          `json:"createdTime"`         // milliseconds since epoch; 0 means unknown
	CreatedTimeReadable string         `json:"createdTimeReadable"` // "2006-01-02 15:04:05"
	LastModified        int64          `json:"lastModified"`        // milliseconds since epoch
	MediaType           string         `json:"media_type,omitempty"`
	TitleSlug           string         `json:"title_slug,omitempty"`
	IsMediaNote         bool           `json:"isMediaNote"`
	IsAudioNote         bool           `json:"isAudioNote"`
	IsBookNote          bool           `json:"isBookNote"`
}

// Filename returns the last path segment of the note's path.
func (n *Note) Filename() string {
	for i := len(n.Path) - 1; i >= 0; i-- {
		if n.Path[i] == '/' {
			return n.Path[i+1:]
		}
	}
	return n.Path
}

// NoteMetadata is the lightweight listing shape returned by storage walks.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link represents a directed edge between two notes.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"` // "inline" or "frontmatter"
}
