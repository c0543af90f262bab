package assist

import (
	"fmt"
	"strings"

	"github.com/halvard/muninn/internal/retrieval"
)

// maxNoteContentLen bounds how much of each context note enters the prompt.
const maxNoteContentLen = 400

func buildSystemPrompt(profile retrieval.UserProfile) string {
	var b strings.Builder
	b.WriteString("You are Muninn, a personal knowledge-base assistant. ")
	b.WriteString("You answer questions about the user's markdown notes. ")
	b.WriteString("Only use the provided note excerpts as factual sources; ")
	b.WriteString("if no excerpts are provided or none are relevant, say that ")
	b.WriteString("nothing relevant was found in the notes instead of inventing an answer.\n\n")

	fmt.Fprintf(&b, "The vault holds %d notes (%d media, %d audio, %d regular), taken at a %s frequency.\n",
		profile.TotalNotes, profile.MediaNotes, profile.AudioNotes, profile.RegularNotes, profile.Frequency)
	if len(profile.Interests) > 0 {
		fmt.Fprintf(&b, "Recurring interests: %s.\n", strings.Join(profile.Interests, ", "))
	}
	if profile.UsesMarkdown {
		b.WriteString("The user writes structured markdown; feel free to answer with markdown formatting.\n")
	}
	return b.String()
}

func buildUserPrompt(question string, intent retrieval.Intent, notes []retrieval.ContextNote) string {
	var b strings.Builder

	if intent.Type == retrieval.IntentSearch {
		if len(notes) == 0 {
			b.WriteString("No notes matched the question")
			if intent.DateFilter != retrieval.DateFilterNone {
				fmt.Fprintf(&b, " within the requested period (%s)", intent.DateFilter)
			}
			b.WriteString(". Tell the user nothing relevant was found.\n\n")
		} else {
			b.WriteString("Relevant note excerpts, most relevant first:\n\n")
			for i, n := range notes {
				fmt.Fprintf(&b, "[%d] %s", i+1, n.Path)
				if n.CreatedTimeReadable != "" {
					fmt.Fprintf(&b, " (created %s)", n.CreatedTimeReadable)
				}
				if len(n.Tags) > 0 {
					fmt.Fprintf(&b, " tags: %s", strings.Join(n.Tags, ", "))
				}
				b.WriteString("\n")
				b.WriteString(truncate(n.Content, maxNoteContentLen))
				b.WriteString("\n\n")
			}
		}
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
