package parser

import (
	"regexp"
	"strings"

	"github.com/halvard/muninn/internal/models"
)

var (
	letterboxdRe = regexp.MustCompile(`https?://letterboxd\.com/film/([^/\s]+)/?`)
	serializdRe  = regexp.MustCompile(`https?://www\.serializd\.com/show/([^/\s]+)/?`)
	wikipediaRe  = regexp.MustCompile(`[a-z]{2}\.wikipedia\.org/wiki/([^/\s]+)`)
	goodreadsRe  = regexp.MustCompile(`goodreads\.com/book/show/\d+\.([^.?#\s]+)`)
	trailingIDRe = regexp.MustCompile(`-\d+$`)
)

// Substrings that mark a note as audio-related when found in its content.
var audioIndicators = []string{
	"spotify.com", "soundcloud.com", "youtube.com/watch",
	"apple.com/music", "music.amazon.com", "bandcamp.com",
	"podcast", "song", "album", "artist", "track", "playlist",
}

// Keywords that mark a note as audio-related when found in its filename.
var audioFilenameKeywords = []string{"music", "song", "album", "podcast", "audio"}

// MediaInfo holds the media classification of a note.
type MediaInfo struct {
	MediaType   string // MediaMovie, MediaTV, MediaWiki or ""
	TitleSlug   string
	IsMediaNote bool
	IsAudioNote bool
	IsBookNote  bool
}

// ClassifyMedia inspects raw note content, the filename, and frontmatter to
// decide which media kind (if any) the note records. The first matching
// catalog link wins: Letterboxd, then Serializd, then Wikipedia. Book notes
// come from a Goodreads link or a frontmatter category.
func ClassifyMedia(raw, filename string, fm map[string]any) MediaInfo {
	var info MediaInfo

	if m := letterboxdRe.FindStringSubmatch(raw); m != nil {
		info.IsMediaNote = true
		info.MediaType = models.MediaMovie
		info.TitleSlug = m[1]
	} else if m := serializdRe.FindStringSubmatch(raw); m != nil {
		info.IsMediaNote = true
		info.MediaType = models.MediaTV
		// Serializd slugs end with a numeric show id.
		info.TitleSlug = trailingIDRe.ReplaceAllString(m[1], "")
	} else if m := wikipediaRe.FindStringSubmatch(raw); m != nil {
		info.IsMediaNote = true
		info.MediaType = models.MediaWiki
		info.TitleSlug = strings.ReplaceAll(m[1], "_", " ")
	}

	info.IsAudioNote = detectAudio(raw, filename)
	info.IsBookNote = detectBook(raw, fm)
	return info
}

func detectAudio(raw, filename string) bool {
	contentLower := strings.ToLower(raw)
	for _, ind := range audioIndicators {
		if strings.Contains(contentLower, ind) {
			return true
		}
	}
	nameLower := strings.ToLower(filename)
	for _, kw := range audioFilenameKeywords {
		if strings.Contains(nameLower, kw) {
			return true
		}
	}
	return false
}

func detectBook(raw string, fm map[string]any) bool {
	if fm != nil {
		if cat, ok := fm["category"].(string); ok && cat == "Books" {
			return true
		}
	}
	return goodreadsRe.MatchString(raw)
}

// BookTitleFromURL extracts a human-readable book title from a Goodreads URL,
// or returns "" when the URL does not match.
func BookTitleFromURL(url string) string {
	m := goodreadsRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "_", " ")
}
