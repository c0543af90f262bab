package retrieval

import "testing"

func TestClassify_Types(t *testing.T) {
	e := NewEngine()
	cases := []struct {
		question string
		want     IntentType
	}{
		{"hello", IntentChat},
		{"thanks", IntentChat},
		{"explain this", IntentChat},
		{"find my notes about rust", IntentSearch},
		{"tell me about stoicism", IntentSearch},
		{"what is the latest book I added", IntentSearch}, // temporal beats chat phrasing
		{"anything in my vault on cooking", IntentSearch},
		{"show me recipes", IntentSearch},
		{"kubernetes networking deep dive", IntentSearch}, // >2 words fallback
		{"rust", IntentChat},                              // short fallback
	}
	for _, tc := range cases {
		t.Run(tc.question, func(t *testing.T) {
			got := e.Classify(tc.question)
			if got.Type != tc.want {
				t.Errorf("Classify(%q).Type = %q, want %q", tc.question, got.Type, tc.want)
			}
		})
	}
}

func TestClassify_Temporal(t *testing.T) {
	e := NewEngine()
	if !e.Classify("what was my latest movie").Temporal {
		t.Error("latest should be temporal")
	}
	if !e.Classify("notes from two days ago").Temporal {
		t.Error("ago should be temporal")
	}
	if e.Classify("tell me about coffee").Temporal {
		t.Error("plain content question misflagged temporal")
	}
}

func TestClassify_DateFilter(t *testing.T) {
	e := NewEngine()
	cases := []struct {
		question string
		want     DateFilter
	}{
		{"what did I write today", DateFilterToday},
		{"show me yesterday's notes", DateFilterYesterday},
		{"what happened this week", DateFilterThisWeek},
		{"notes from last week", DateFilterThisWeek},
		{"tell me about jazz", DateFilterNone},
		{"what was my latest movie", DateFilterNone}, // temporal but no hard window
	}
	for _, tc := range cases {
		t.Run(tc.question, func(t *testing.T) {
			got := e.Classify(tc.question)
			if got.DateFilter != tc.want {
				t.Errorf("DateFilter = %q, want %q", got.DateFilter, tc.want)
			}
		})
	}
}

func TestClassify_AlwaysComplete(t *testing.T) {
	e := NewEngine()
	intent := e.Classify("what notes did I take about music today")
	if intent.Type == "" {
		t.Error("type must always be set")
	}
	if len(intent.Terms) == 0 {
		t.Error("raw terms must be preserved")
	}
	if intent.Terms[0] != "what" {
		t.Errorf("terms should be raw whitespace tokens, got %v", intent.Terms)
	}
}

func TestIntentRules_OrderedPrecedence(t *testing.T) {
	// The rule list must end with a catch-all so classification is total.
	last := intentRules[len(intentRules)-1]
	if !last.applies(&question{}) {
		t.Error("final rule must match any question")
	}

	// Search signals precede chat signals.
	searchIdx, chatIdx := -1, -1
	for i, r := range intentRules {
		if r.outcome == IntentSearch && searchIdx == -1 {
			searchIdx = i
		}
		if r.outcome == IntentChat && chatIdx == -1 {
			chatIdx = i
		}
	}
	if searchIdx > chatIdx {
		t.Errorf("search rules must come before chat rules: search=%d chat=%d", searchIdx, chatIdx)
	}
}
