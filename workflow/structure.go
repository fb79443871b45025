package workflow

import (
	"fmt"

	"github.com/deckforge/deckforge/deck"
)

// Default bounds on the planned slide count. A caller-provided target
// overrides the upper bound but never the minimum viable deck of title,
// one content slide and conclusion.
const (
	minSlides = 3
	maxSlides = 5
)

// plan produces the slide plan from the analysis. target selects the exact
// slide count; zero derives it from the section count, bounded to
// [minSlides, maxSlides]. The first entry is always the title slide and the
// last the conclusion.
func plan(a Analysis, target int) []deck.PlanEntry {
	count := target
	if count == 0 {
		count = len(a.Sections) + 2
		if count < minSlides {
			count = minSlides
		}
		if count > maxSlides {
			count = maxSlides
		}
	}

	entries := make([]deck.PlanEntry, 0, count)
	entries = append(entries, deck.PlanEntry{
		Position: 0,
		Kind:     deck.KindTitle,
		Title:    a.DocumentTitle,
	})

	for i := 0; i < count-2; i++ {
		title := fmt.Sprintf("Key Point %d", i+1)
		if i < len(a.Sections) {
			title = a.Sections[i].Title
		}
		entries = append(entries, deck.PlanEntry{
			Position: i + 1,
			Kind:     deck.KindContent,
			Title:    title,
		})
	}

	entries = append(entries, deck.PlanEntry{
		Position: count - 1,
		Kind:     deck.KindConclusion,
		Title:    "Key Takeaways & Next Steps",
	})
	return entries
}
