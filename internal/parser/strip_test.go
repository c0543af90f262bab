package parser

import (
	"strings"
	"testing"
)

func TestStripMarkdown_Formatting(t *testing.T) {
	in := "# Heading\nSome **bold** and *italic* and `code`.\n- item one\n1. item two\n"
	out := StripMarkdown(in)
	for _, forbidden := range []string{"#", "**", "*", "`", "- ", "1. "} {
		if strings.Contains(out, forbidden) {
			t.Errorf("output still contains %q: %q", forbidden, out)
		}
	}
	for _, want := range []string{"Heading", "bold", "italic", "code", "item one", "item two"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestStripMarkdown_CodeBlocksRemoved(t *testing.T) {
	in := "before\n```go\nfunc secret() {}\n```\nafter"
	out := StripMarkdown(in)
	if strings.Contains(out, "secret") {
		t.Errorf("fenced code should be removed, got %q", out)
	}
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Errorf("surrounding prose lost: %q", out)
	}
}

func TestStripMarkdown_LinksAndTasks(t *testing.T) {
	in := "See [site](https://example.com) and [[Other Note|alias]].\n- [ ] todo\n- [x] done\n~~gone~~ ==kept=="
	out := StripMarkdown(in)
	if strings.Contains(out, "https://example.com") {
		t.Errorf("link URL should be removed: %q", out)
	}
	for _, want := range []string{"site", "Other Note", "todo", "done", "gone", "kept"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}
