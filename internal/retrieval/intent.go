// Package retrieval implements the question-answering core: intent
// classification, term extraction, temporal filtering, lexical ranking, and
// context assembly over an in-memory note corpus. Everything here is a pure
// function over the corpus it is given; the corpus is never mutated and no
// I/O happens.
package retrieval

import "strings"

// IntentType classifies what the user wants from a question.
type IntentType string

const (
	IntentChat   IntentType = "chat"
	IntentSearch IntentType = "search"
)

// DateFilter is a hard restriction on note creation dates. It is narrower
// than the temporal flag: a question can be temporal ("latest movie")
// without carrying a date filter.
type DateFilter string

const (
	DateFilterNone      DateFilter = ""
	DateFilterToday     DateFilter = "today"
	DateFilterYesterday DateFilter = "yesterday"
	DateFilterThisWeek  DateFilter = "this_week"
)

// Intent is the classification of a single question. Constructed once per
// question, never persisted.
type Intent struct {
	Type       IntentType
	Temporal   bool
	DateFilter DateFilter
	// Terms holds the raw whitespace-split tokens of the original question,
	// preserved for fallback scoring.
	Terms []string
}

// Keyword sets for classification. Matching is substring containment on the
// lower-cased question.
var (
	temporalKeywords = []string{
		"latest", "last", "recent", "newest", "oldest", "first",
		"today", "yesterday", "ago", "this week", "this month",
	}
	searchKeywords = []string{
		"find", "search", "look for", "show me", "tell me about",
		"do i have", "what do you know about", "anything about",
	}
	chatKeywords = []string{
		"hello", "hi ", "hey", "what is", "what are", "explain",
		"how do", "thanks", "thank you", "who are you",
	}
)

// Date-filter phrases in precedence order; the first match wins. The phrases
// are mutually exclusive in practice ("today" never co-occurs with
// "yesterday" in a meaningful question).
var dateFilterPhrases = []struct {
	phrase string
	filter DateFilter
}{
	{"today", DateFilterToday},
	{"yesterday", DateFilterYesterday},
	{"last week", DateFilterThisWeek},
	{"this week", DateFilterThisWeek},
}

// question is the pre-computed view of a raw question that classification
// rules test against.
type question struct {
	lower    string
	words    []string
	temporal bool
}

// intentRule is one step of the ordered classification policy: the first
// rule whose predicate matches decides the intent type. Explicit search and
// temporal signals come before chat phrasing, so "what is the latest book I
// added" classifies as search despite containing "what is".
type intentRule struct {
	name    string
	applies func(q *question) bool
	outcome IntentType
}

var intentRules = []intentRule{
	{
		name: "explicit search keyword",
		applies: func(q *question) bool {
			return containsAny(q.lower, searchKeywords)
		},
		outcome: IntentSearch,
	},
	{
		name:    "temporal question",
		applies: func(q *question) bool { return q.temporal },
		outcome: IntentSearch,
	},
	{
		name: "possessive vault reference",
		applies: func(q *question) bool {
			return strings.Contains(q.lower, "my") &&
				(strings.Contains(q.lower, "notes") || strings.Contains(q.lower, "vault"))
		},
		outcome: IntentSearch,
	},
	{
		name: "chat keyword",
		applies: func(q *question) bool {
			return containsAny(q.lower, chatKeywords) && !q.temporal
		},
		outcome: IntentChat,
	},
	{
		name:    "long question fallback",
		applies: func(q *question) bool { return len(q.words) > 2 },
		outcome: IntentSearch,
	},
	{
		name:    "short question fallback",
		applies: func(q *question) bool { return true },
		outcome: IntentChat,
	},
}

// Classify maps a raw question to an Intent. It always returns a complete
// Intent; there are no error conditions. The caller is responsible for
// rejecting empty questions before calling.
func (e *Engine) Classify(raw string) Intent {
	lower := strings.ToLower(strings.TrimSpace(raw))
	q := &question{
		lower:    lower,
		words:    strings.Fields(lower),
		temporal: containsAny(lower, temporalKeywords),
	}

	intent := Intent{
		Temporal: q.temporal,
		Terms:    strings.Fields(raw),
	}
	for _, df := range dateFilterPhrases {
		if strings.Contains(lower, df.phrase) {
			intent.DateFilter = df.filter
			break
		}
	}
	for _, rule := range intentRules {
		if rule.applies(q) {
			intent.Type = rule.outcome
			break
		}
	}
	return intent
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
