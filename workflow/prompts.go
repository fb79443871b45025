package workflow

import (
	"fmt"
	"strings"

	"github.com/deckforge/deckforge/deck"
)

// slidePrompt builds the user prompt for one slide's content request. The
// prompt pins the exact JSON shape so strict parsing usually succeeds on the
// first attempt.
func slidePrompt(entry deck.PlanEntry, a Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write the content for one slide of a presentation titled %q.\n\n", a.DocumentTitle)
	fmt.Fprintf(&b, "Slide %d of the deck. Role: %s. Slide title: %q.\n", entry.Position+1, entry.Kind, entry.Title)
	if len(a.Themes) > 0 {
		fmt.Fprintf(&b, "Presentation themes: %s.\n", strings.Join(a.Themes, ", "))
	}
	if body := sectionBody(entry, a); body != "" {
		fmt.Fprintf(&b, "\nSource material for this slide:\n%s\n", truncate(body, 1200))
	}

	fmt.Fprintf(&b, `
Respond with a single JSON object, no other text:
{
  "bullets": [%d to %d bullet strings, each %d to %d words],
  "key_message": "one sentence takeaway"`,
		deck.MinBullets, deck.MaxBullets, deck.MinBulletWords, deck.MaxBulletWords)
	if entry.Kind == deck.KindTitle {
		b.WriteString(`,
  "subtitle": "short supporting line"`)
	}
	b.WriteString("\n}\n")
	return b.String()
}

// sectionBody returns the document section backing a content slide, if any.
func sectionBody(entry deck.PlanEntry, a Analysis) string {
	if entry.Kind != deck.KindContent {
		return ""
	}
	idx := entry.Position - 1
	if idx < 0 || idx >= len(a.Sections) {
		return ""
	}
	return a.Sections[idx].Content
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
