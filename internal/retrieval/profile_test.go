package retrieval

import (
	"fmt"
	"testing"

	"github.com/halvard/muninn/internal/models"
)

func TestBuildProfile_Counts(t *testing.T) {
	media := contentNote("m.md", "film note", refNow)
	media.IsMediaNote = true
	audio := contentNote("a.md", "song note", refNow)
	audio.IsAudioNote = true
	plain := contentNote("p.md", "plain", refNow)

	p := BuildProfile([]models.Note{media, audio, plain})
	if p.TotalNotes != 3 || p.MediaNotes != 1 || p.AudioNotes != 1 || p.RegularNotes != 1 {
		t.Errorf("profile counts = %+v", p)
	}
}

func TestBuildProfile_Interests(t *testing.T) {
	var corpus []models.Note
	// "photography" appears 6 times, "travel" 4 times, "gaming" only twice
	// (below the threshold).
	corpus = append(corpus, contentNote("a.md", "photography photography photography travel", refNow))
	corpus = append(corpus, contentNote("b.md", "photography photography photography travel travel travel", refNow))
	corpus = append(corpus, contentNote("c.md", "gaming gaming", refNow))

	p := BuildProfile(corpus)
	if len(p.Interests) != 2 {
		t.Fatalf("interests = %v, want photography and travel", p.Interests)
	}
	if p.Interests[0] != "photography" || p.Interests[1] != "travel" {
		t.Errorf("interests = %v, want frequency-descending order", p.Interests)
	}
}

func TestBuildProfile_InterestsCapped(t *testing.T) {
	var corpus []models.Note
	for _, topic := range interestTopics[:8] {
		corpus = append(corpus, contentNote(topic+".md", fmt.Sprintf("%s %s %s", topic, topic, topic), refNow))
	}
	p := BuildProfile(corpus)
	if len(p.Interests) > maxInterests {
		t.Errorf("interests = %d, want at most %d", len(p.Interests), maxInterests)
	}
}

func TestBuildProfile_Style(t *testing.T) {
	md := contentNote("md.md", "# Heading\n**bold**", refNow)
	plain1 := contentNote("p1.md", "plain prose", refNow)
	plain2 := contentNote("p2.md", "more prose", refNow)

	p := BuildProfile([]models.Note{md, plain1, plain2})
	if !p.UsesMarkdown {
		t.Error("1 of 3 notes is markdown (33%), above the 30% threshold")
	}

	p = BuildProfile([]models.Note{plain1, plain2, contentNote("p3.md", "x", refNow), contentNote("p4.md", "y", refNow)})
	if p.UsesMarkdown {
		t.Error("no markdown notes should not count as markdown style")
	}
}

func TestBuildProfile_Frequency(t *testing.T) {
	mk := func(n int) []models.Note {
		out := make([]models.Note, n)
		for i := range out {
			out[i] = contentNote(fmt.Sprintf("n%d.md", i), "x", refNow)
		}
		return out
	}
	if p := BuildProfile(mk(150)); p.Frequency != "high" {
		t.Errorf("150 notes => %q, want high", p.Frequency)
	}
	if p := BuildProfile(mk(50)); p.Frequency != "medium" {
		t.Errorf("50 notes => %q, want medium", p.Frequency)
	}
	if p := BuildProfile(mk(5)); p.Frequency != "low" {
		t.Errorf("5 notes => %q, want low", p.Frequency)
	}
}
