package retrieval

import (
	"sort"
	"strings"

	"github.com/halvard/muninn/internal/models"
)

// Scoring constants. The values are empirically tuned and intentionally not
// normalized; they live here so retuning never touches scoring logic.
const (
	weightRawContent   = 10
	weightCleanContent = 12
	weightPath         = 25
	weightTags         = 15

	exactPhraseBoost = 15 // multiplied by field weight
	termCountBoost   = 2  // multiplied by occurrences and field weight
	filenameBonus    = 100

	// DefaultMaxResults caps ranked output when the caller passes 0.
	DefaultMaxResults = 8
)

// ScoredNote pairs a note with its relevance score. A zero score means
// excluded, not neutral; zero-scored notes never reach callers.
type ScoredNote struct {
	Note  models.Note
	Score int
}

// searchField is one weighted searchable projection of a note.
type searchField struct {
	content string
	weight  int
}

func fieldsOf(n *models.Note) [4]searchField {
	return [4]searchField{
		{strings.ToLower(n.RawContent), weightRawContent},
		{strings.ToLower(n.ContentWithoutTags), weightCleanContent},
		{strings.ToLower(n.Path), weightPath},
		{strings.ToLower(strings.Join(n.Tags, " ")), weightTags},
	}
}

// scoreNote computes the lexical relevance of one note: exact-phrase boosts,
// per-term frequency boosts across the weighted fields, a flat filename
// bonus per matching term, and a raw-word fallback when everything else
// scored zero.
func scoreNote(n *models.Note, queryLower string, terms []string) int {
	fields := fieldsOf(n)
	filename := strings.ToLower(n.Filename())
	score := 0

	for _, f := range fields {
		if strings.Contains(f.content, queryLower) {
			score += f.weight * exactPhraseBoost
		}
	}

	for _, term := range terms {
		if len(term) < 2 {
			continue
		}
		for _, f := range fields {
			if count := strings.Count(f.content, term); count > 0 {
				score += count * f.weight * termCountBoost
			}
		}
		if strings.Contains(filename, term) {
			score += filenameBonus
		}
	}

	if score == 0 {
		// Stop-word-heavy or very short queries: fall back to the raw
		// whitespace-split words so something still surfaces.
		for _, word := range strings.Fields(queryLower) {
			if len(word) <= 2 {
				continue
			}
			for _, f := range fields {
				score += strings.Count(f.content, word) * f.weight
			}
		}
	}

	return score
}

// rankLexical scores every note against the query and returns the top
// maxResults notes with a positive score, ordered by score descending.
// Score ties break on recency (newer first) so ordering never depends on
// incidental corpus order.
func rankLexical(corpus []models.Note, queryLower string, terms []string, maxResults int) []ScoredNote {
	var scored []ScoredNote
	for i := range corpus {
		if s := scoreNote(&corpus[i], queryLower, terms); s > 0 {
			scored = append(scored, ScoredNote{Note: corpus[i], Score: s})
		}
	}
	sortScored(scored)
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	return scored
}

func sortScored(scored []ScoredNote) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Note.CreatedTime > scored[j].Note.CreatedTime
	})
}
