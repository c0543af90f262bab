package parser

import (
	"regexp"
	"strings"
)

// Markdown constructs removed by StripMarkdown, applied in order. Fenced code
// blocks go first so their contents never leak into later passes.
var stripPasses = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("(?s)```.*?```"), ""},          // fenced code blocks
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},         // headings
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},        // bold
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},            // italic
	{regexp.MustCompile("`(.*?)`"), "$1"},              // inline code
	{regexp.MustCompile(`\[(.*?)\]\(.*?\)`), "$1"},     // markdown links
	{regexp.MustCompile(`\[\[(.*?)\]\]`), "$1"},        // wikilinks
	{regexp.MustCompile(`==(.+?)==`), "$1"},            // highlights
	{regexp.MustCompile(`~~(.+?)~~`), "$1"},            // strikethrough
	{regexp.MustCompile(`- \[[ x]\]`), ""},             // task checkboxes
	{regexp.MustCompile(`(?m)^- `), ""},                // list markers
	{regexp.MustCompile(`(?m)^\d+\. `), ""},            // numbered lists
	{regexp.MustCompile(`---+`), ""},                   // horizontal rules
}

var blankRunRe = regexp.MustCompile(`\n\s*\n`)

// StripMarkdown removes Markdown formatting, leaving plain prose. The result
// is used as the tag-stripped search field and as the preferred content in
// chat context.
func StripMarkdown(content string) string {
	for _, p := range stripPasses {
		content = p.re.ReplaceAllString(content, p.repl)
	}
	content = blankRunRe.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
