package retrieval

import (
	"strings"

	"github.com/halvard/muninn/internal/models"
)

// Fusion constants. Recency rank dominates lexical relevance: position in
// the time-sorted list is worth fusionRecencyWeight per step, while a term
// match adjusts within a recency neighborhood.
const (
	fusionRecencyWeight   = 10
	fusionRawContentBonus = 10
	fusionPathBonus       = 20

	// Candidate pool multipliers over maxResults.
	dateFilterPoolFactor  = 2
	contentTypePoolFactor = 3
)

// Temporal sort keywords in priority order; the first one found in the query
// determines direction. "latest" is the fallback when the caller believes
// the query is temporal but no keyword matched.
var temporalSortKeywords = []struct {
	keyword   string
	ascending bool
}{
	{"latest", false},
	{"last", false},
	{"recent", false},
	{"newest", false},
	{"oldest", true},
	{"first", true},
}

// isTemporalSort reports whether the query carries a temporal ordering
// keyword, which routes ranking through fusion instead of pure lexical
// scoring.
func isTemporalSort(queryLower string) bool {
	for _, k := range temporalSortKeywords {
		if strings.Contains(queryLower, k.keyword) {
			return true
		}
	}
	return false
}

// Content-type filters in fixed match order; the first keyword contained in
// the query narrows the candidate pool to matching notes.
var contentTypeFilters = []struct {
	keyword string
	match   func(n *models.Note) bool
}{
	{"movie", func(n *models.Note) bool { return n.MediaType == models.MediaMovie }},
	{"film", func(n *models.Note) bool { return n.MediaType == models.MediaMovie }},
	{"show", func(n *models.Note) bool { return n.MediaType == models.MediaTV }},
	{"tv", func(n *models.Note) bool { return n.MediaType == models.MediaTV }},
	{"series", func(n *models.Note) bool { return n.MediaType == models.MediaTV }},
	{"book", func(n *models.Note) bool {
		return n.IsBookNote || strings.Contains(strings.ToLower(n.RawContent), "book") ||
			strings.Contains(strings.ToLower(n.RawContent), "goodreads")
	}},
	{"audio", func(n *models.Note) bool { return n.IsAudioNote }},
	{"music", func(n *models.Note) bool { return n.IsAudioNote }},
	{"note", func(n *models.Note) bool { return !n.IsMediaNote && !n.IsAudioNote }},
	{"clip", func(n *models.Note) bool {
		return strings.Contains(strings.ToLower(n.Path), "clip") ||
			strings.Contains(strings.ToLower(n.RawContent), "clipped")
	}},
}

// rankTemporal handles queries like "latest movie" or "first book I added":
// time order first, content-type narrowing second, lexical relevance as a
// tiebreak within the recency neighborhood.
//
// The corpus must already be date-restricted when dateFiltered is true; in
// that case content-type narrowing is skipped and the date window wins.
func rankTemporal(corpus []models.Note, queryLower string, terms []string, maxResults int, dateFiltered bool) []ScoredNote {
	ascending := false
	for _, k := range temporalSortKeywords {
		if strings.Contains(queryLower, k.keyword) {
			ascending = k.ascending
			break
		}
	}
	sorted := sortByCreated(corpus, ascending)

	var candidates []models.Note
	if dateFiltered {
		candidates = headOf(sorted, maxResults*dateFilterPoolFactor)
	} else {
		for _, ct := range contentTypeFilters {
			if !strings.Contains(queryLower, ct.keyword) {
				continue
			}
			for _, n := range sorted {
				if ct.match(&n) {
					candidates = append(candidates, n)
				}
			}
			break
		}
		// No type keyword, or the filter changed nothing: plain recency.
		if len(candidates) == 0 || len(candidates) == len(sorted) {
			candidates = headOf(sorted, maxResults*contentTypePoolFactor)
		}
	}

	candidates = headOf(candidates, maxResults*contentTypePoolFactor)
	scored := make([]ScoredNote, 0, len(candidates))
	for i, n := range candidates {
		recency := maxResults*contentTypePoolFactor - i
		content := 0
		rawLower := strings.ToLower(n.RawContent)
		pathLower := strings.ToLower(n.Path)
		for _, term := range terms {
			if strings.Contains(rawLower, term) {
				content += fusionRawContentBonus
			}
			if strings.Contains(pathLower, term) {
				content += fusionPathBonus
			}
		}
		scored = append(scored, ScoredNote{Note: n, Score: recency*fusionRecencyWeight + content})
	}

	sortScored(scored)
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	return scored
}

func headOf(notes []models.Note, n int) []models.Note {
	if len(notes) > n {
		return notes[:n]
	}
	return notes
}
