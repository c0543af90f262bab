package retrieval

import (
	"strings"
	"time"

	"github.com/halvard/muninn/internal/models"
)

// Engine is the retrieval core's entry point. It holds no corpus and no
// per-request state; the corpus is injected into every call and treated as
// immutable, so one Engine serves concurrent requests.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineAt creates an Engine with a fixed clock, for tests exercising
// date buckets deterministically.
func NewEngineAt(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Rank scores the corpus against the question and returns the top context
// notes. A date filter, when present, restricts the candidate pool before
// any scoring: an empty filtered bucket yields an empty result, never a
// broadened search. Temporal questions route through recency-first fusion,
// everything else through lexical scoring. Rank never fails; no matches is
// an empty slice.
func (e *Engine) Rank(question string, corpus []models.Note, filter DateFilter, maxResults int) []ContextNote {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	queryLower := strings.ToLower(strings.TrimSpace(question))
	if queryLower == "" || len(corpus) == 0 {
		return []ContextNote{}
	}

	candidates := FilterByDate(corpus, filter, e.now())
	if len(candidates) == 0 {
		return []ContextNote{}
	}

	terms := ExtractTerms(question)

	var scored []ScoredNote
	if isTemporalSort(queryLower) {
		scored = rankTemporal(candidates, queryLower, terms, maxResults, filter != DateFilterNone)
	} else {
		scored = rankLexical(candidates, queryLower, terms, maxResults)
	}
	return assembleContext(scored, maxResults)
}
