package retrieval

import (
	"regexp"
	"strings"
)

// Stop-words dropped from extracted search terms.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		find search look for about tell me what do you know
		show get give information details on my notes vault in
		the a an and or but is are was were have has
		had will would could should can may might must shall
		this that these those i we they he she it from
		to with by at of as like than so if when where
		how why who which please help any some all`) {
		stopWords[w] = struct{}{}
	}
}

// Question-framing idioms stripped before tokenization. Applied in order.
var framingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(find|search|look)\s+(for|about)\b`),
	regexp.MustCompile(`\b(tell|show|give)\s+me\s+(about\s+)?`),
	regexp.MustCompile(`\b(what|how)\s+(do\s+you\s+know\s+about|about)\b`),
	regexp.MustCompile(`\b(in|on|from)\s+my\s+(notes|vault|obsidian|files)\b`),
}

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// minTermLength is the shortest token worth scoring; anything shorter is
// almost always noise.
const minTermLength = 3

// ExtractTerms strips conversational scaffolding and stop-words from a
// question, leaving content-bearing tokens for the ranker. If filtering
// leaves nothing, it falls back to every token of the original question
// longer than two characters, so the ranker always has the user's real
// words to match against. Duplicate tokens are kept: repeated terms
// legitimately weigh heavier downstream.
func ExtractTerms(query string) []string {
	lower := strings.ToLower(strings.TrimSpace(query))

	cleaned := lower
	for _, pat := range framingPatterns {
		cleaned = pat.ReplaceAllString(cleaned, " ")
	}

	var terms []string
	for _, w := range wordRe.FindAllString(cleaned, -1) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if len(w) < minTermLength {
			continue
		}
		terms = append(terms, w)
	}
	if len(terms) > 0 {
		return terms
	}

	// Every word was framing or a stop-word: fall back to the unfiltered
	// question.
	for _, w := range wordRe.FindAllString(lower, -1) {
		if len(w) >= minTermLength {
			terms = append(terms, w)
		}
	}
	return terms
}
