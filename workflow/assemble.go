package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deckforge/deckforge/deck"
)

// assemble merges the slide plan with the per-slide contents and attaches
// the statistics snapshot. It refuses to build a result from mismatched
// inputs; the coordinator guarantees a content for every planned slide, so a
// failure here indicates a pipeline bug, not a degraded run.
func assemble(a Analysis, entries []deck.PlanEntry, contents []deck.Content, theme deck.ThemeSpec, stats deck.Statistics, started time.Time) (*deck.Result, error) {
	if len(contents) != len(entries) {
		return nil, fmt.Errorf("assemble: %d contents for %d planned slides", len(contents), len(entries))
	}

	slides := make([]deck.Slide, len(entries))
	for i, entry := range entries {
		content := contents[i]
		if err := content.Validate(); err != nil {
			return nil, fmt.Errorf("assemble: slide %d invalid: %w", i, err)
		}
		if entry.Position != i {
			return nil, fmt.Errorf("assemble: slide %d planned at position %d", i, entry.Position)
		}
		slides[i] = deck.Slide{
			Position:   entry.Position,
			Kind:       entry.Kind,
			Title:      entry.Title,
			Subtitle:   content.Subtitle,
			Bullets:    content.Bullets,
			KeyMessage: content.KeyMessage,
			Provenance: content.Provenance,
		}
	}

	now := time.Now()
	return &deck.Result{
		RunID:         uuid.NewString(),
		DocumentTitle: a.DocumentTitle,
		Themes:        a.Themes,
		Slides:        slides,
		Theme:         theme,
		Stats:         stats,
		CreatedAt:     now,
		Duration:      now.Sub(started).Milliseconds(),
	}, nil
}
