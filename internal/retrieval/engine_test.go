package retrieval

import (
	"reflect"
	"testing"
	"time"

	"github.com/halvard/muninn/internal/models"
)

func fixedEngine() *Engine {
	return NewEngineAt(func() time.Time { return refNow })
}

func TestRank_EmptyInputs(t *testing.T) {
	e := fixedEngine()
	if got := e.Rank("anything", nil, DateFilterNone, 8); len(got) != 0 {
		t.Errorf("empty corpus should rank to nothing, got %v", got)
	}
	corpus := []models.Note{contentNote("a.md", "text", refNow)}
	if got := e.Rank("   ", corpus, DateFilterNone, 8); len(got) != 0 {
		t.Errorf("blank question should rank to nothing, got %v", got)
	}
}

func TestRank_Idempotent(t *testing.T) {
	e := fixedEngine()
	corpus := []models.Note{
		contentNote("a.md", "notes on fermentation and bread", refNow.Add(-time.Hour)),
		contentNote("b.md", "bread baking log", refNow.Add(-2*time.Hour)),
		contentNote("c.md", "unrelated", refNow),
	}
	first := e.Rank("bread", corpus, DateFilterNone, 8)
	second := e.Rank("bread", corpus, DateFilterNone, 8)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated ranking diverged:\n%v\n%v", first, second)
	}
}

func TestRank_DateFilterNeverLeaks(t *testing.T) {
	e := fixedEngine()
	corpus := []models.Note{
		contentNote("today/clip.md", "clipped an article", refNow.Add(-time.Hour)),
		contentNote("old/clip.md", "clipped something great", refNow.AddDate(0, -2, 0)),
	}
	got := e.Rank("clipped today", corpus, DateFilterToday, 8)
	todayStart := time.Date(refNow.Year(), refNow.Month(), refNow.Day(), 0, 0, 0, 0, refNow.Location())
	for _, cn := range got {
		created := time.UnixMilli(cn.CreatedTime)
		if created.Before(todayStart) {
			t.Errorf("note %s outside today window leaked into filtered results", cn.Path)
		}
	}
	if len(got) != 1 {
		t.Errorf("results = %d, want 1", len(got))
	}
}

func TestRank_EmptyDateBucketReturnsNothing(t *testing.T) {
	e := fixedEngine()
	// Lexically strong matches for "clipped", but nothing created today.
	corpus := []models.Note{
		contentNote("clips/one.md", "clipped article one", refNow.AddDate(0, 0, -10)),
		contentNote("clips/two.md", "clipped article two", refNow.AddDate(0, 0, -11)),
	}
	if got := e.Rank("clipped today", corpus, DateFilterToday, 8); len(got) != 0 {
		t.Errorf("empty bucket must yield empty result, got %v", got)
	}
}

func TestRank_TemporalQueryTopResultIsNewest(t *testing.T) {
	e := fixedEngine()
	var corpus []models.Note
	for i := 0; i < 10; i++ {
		corpus = append(corpus, contentNote(
			rune2path(i), "daily entry", refNow.Add(-time.Duration(i+1)*time.Minute)))
	}
	got := e.Rank("latest note", corpus, DateFilterNone, 8)
	if len(got) == 0 {
		t.Fatal("no results")
	}
	var maxCreated int64
	for _, n := range corpus {
		if n.CreatedTime > maxCreated {
			maxCreated = n.CreatedTime
		}
	}
	if got[0].CreatedTime != maxCreated {
		t.Errorf("top created = %d, want %d", got[0].CreatedTime, maxCreated)
	}
}

func TestRank_ZeroScoredNotesExcluded(t *testing.T) {
	e := fixedEngine()
	corpus := []models.Note{
		contentNote("hit.md", "all about beekeeping", refNow),
		contentNote("miss.md", "completely unrelated", refNow),
	}
	got := e.Rank("beekeeping", corpus, DateFilterNone, 8)
	for _, cn := range got {
		if cn.Score <= 0 {
			t.Errorf("zero-scored note %s in output", cn.Path)
		}
		if cn.Path == "miss.md" {
			t.Error("non-matching note must be excluded")
		}
	}
}

func TestRank_ContextProjection(t *testing.T) {
	e := fixedEngine()
	n := contentNote("a.md", "raw text", refNow)
	n.ContentWithoutTags = "clean text"
	n.Tags = []string{"tagged"}
	got := e.Rank("text", []models.Note{n}, DateFilterNone, 8)
	if len(got) != 1 {
		t.Fatalf("results = %d", len(got))
	}
	if got[0].Content != "clean text" {
		t.Errorf("content = %q, want tag-stripped variant", got[0].Content)
	}
	if len(got[0].Tags) != 1 || got[0].Tags[0] != "tagged" {
		t.Errorf("tags = %v", got[0].Tags)
	}
}

func TestRank_DefaultCap(t *testing.T) {
	e := fixedEngine()
	var corpus []models.Note
	for i := 0; i < 15; i++ {
		corpus = append(corpus, contentNote(rune2path(i), "tea journal", refNow.Add(-time.Duration(i)*time.Hour)))
	}
	if got := e.Rank("tea", corpus, DateFilterNone, 0); len(got) != DefaultMaxResults {
		t.Errorf("results = %d, want default cap %d", len(got), DefaultMaxResults)
	}
}

func rune2path(i int) string {
	return string(rune('a'+i)) + "/entry.md"
}
