package retrieval

import (
	"sort"
	"strings"

	"github.com/halvard/muninn/internal/models"
)

// Profile-building constants.
const (
	maxInterests          = 5
	interestMinOccurrence = 2    // a topic needs more occurrences than this
	markdownStyleRatio    = 0.3  // share of notes using markdown to call it a habit
	highFrequencyNotes    = 100
	mediumFrequencyNotes  = 20
)

// Fixed topic vocabulary scanned for interests.
var interestTopics = []string{
	"programming", "technology", "music", "movies", "books", "travel",
	"food", "health", "science", "history", "art", "philosophy",
	"finance", "sports", "gaming", "photography", "writing", "design",
}

// Markers counted as markdown usage within a note.
var markdownMarkers = []string{"# ", "**", "[[", "```", "- [ ]", "- [x]"}

// UserProfile is a corpus-wide aggregate used to personalize generation
// prompts. It is recomputed per request; at personal corpus scale that is
// cheaper than keeping it coherent incrementally.
type UserProfile struct {
	TotalNotes   int      `json:"total_notes"`
	MediaNotes   int      `json:"media_notes"`
	AudioNotes   int      `json:"audio_notes"`
	RegularNotes int      `json:"regular_notes"`
	Interests    []string `json:"interests"`
	UsesMarkdown bool     `json:"uses_markdown"`
	Frequency    string   `json:"note_frequency"` // "high", "medium", "low"
}

// BuildProfile aggregates corpus statistics: note-kind counts, the top
// interest topics by occurrence, and note-taking style.
func BuildProfile(corpus []models.Note) UserProfile {
	p := UserProfile{TotalNotes: len(corpus)}

	topicCounts := make(map[string]int, len(interestTopics))
	markdownNotes := 0

	for i := range corpus {
		n := &corpus[i]
		switch {
		case n.IsMediaNote:
			p.MediaNotes++
		case n.IsAudioNote:
			p.AudioNotes++
		default:
			p.RegularNotes++
		}

		lower := strings.ToLower(n.RawContent)
		for _, topic := range interestTopics {
			topicCounts[topic] += strings.Count(lower, topic)
		}
		for _, marker := range markdownMarkers {
			if strings.Contains(n.RawContent, marker) {
				markdownNotes++
				break
			}
		}
	}

	type topicCount struct {
		topic string
		count int
	}
	var hits []topicCount
	for _, topic := range interestTopics {
		if c := topicCounts[topic]; c > interestMinOccurrence {
			hits = append(hits, topicCount{topic, c})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].count > hits[j].count })
	for i, h := range hits {
		if i == maxInterests {
			break
		}
		p.Interests = append(p.Interests, h.topic)
	}

	if p.TotalNotes > 0 {
		p.UsesMarkdown = float64(markdownNotes)/float64(p.TotalNotes) >= markdownStyleRatio
	}
	switch {
	case p.TotalNotes > highFrequencyNotes:
		p.Frequency = "high"
	case p.TotalNotes > mediumFrequencyNotes:
		p.Frequency = "medium"
	default:
		p.Frequency = "low"
	}
	return p
}
