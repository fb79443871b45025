// Package deck defines the data model shared by the presentation pipeline:
// slide plans, slide content, theme specifications and the assembled result.
package deck

import (
	"fmt"
	"strings"
	"time"
)

// SlideKind identifies the role of a slide within a presentation.
type SlideKind string

const (
	KindTitle      SlideKind = "title"
	KindContent    SlideKind = "content"
	KindConclusion SlideKind = "conclusion"
)

// Provenance records where a slide's content came from.
type Provenance string

const (
	// ProvenanceGenerated marks content produced by the generative upstream.
	ProvenanceGenerated Provenance = "generated"
	// ProvenanceFallback marks content produced by the template synthesizer.
	ProvenanceFallback Provenance = "fallback"
)

// Structural bounds every slide's content must satisfy, generated or not.
const (
	MinBullets     = 4
	MaxBullets     = 5
	MinBulletWords = 3
	MaxBulletWords = 7
)

// PlanEntry is one position in the slide plan decided during structure
// planning. Entries are immutable once the plan is produced.
type PlanEntry struct {
	// Position is the zero-based slide index.
	Position int `json:"position"`

	// Kind is the slide role. The first entry is always KindTitle and the
	// last always KindConclusion.
	Kind SlideKind `json:"kind"`

	// Title is the working title decided at planning time.
	Title string `json:"title"`
}

// Content is the generated or synthesized body of a single slide.
type Content struct {
	// Bullets holds 4-5 bullet strings of 3-7 words each.
	Bullets []string `json:"bullets"`

	// KeyMessage is the single takeaway line for the slide. Never empty.
	KeyMessage string `json:"key_message"`

	// Subtitle is optional supporting text, used on title slides.
	Subtitle string `json:"subtitle,omitempty"`

	// Provenance tags the content source.
	Provenance Provenance `json:"provenance"`
}

// WordCount returns the number of whitespace-separated words in s after
// stripping a leading bullet marker.
func WordCount(s string) int {
	return len(strings.Fields(StripBulletMarker(s)))
}

// StripBulletMarker removes a leading "•", "-" or "*" marker from a bullet.
func StripBulletMarker(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, marker := range []string{"•", "-", "*"} {
		if strings.HasPrefix(trimmed, marker) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
		}
	}
	return trimmed
}

// Validate checks the structural invariants for slide content.
func (c Content) Validate() error {
	if n := len(c.Bullets); n < MinBullets || n > MaxBullets {
		return fmt.Errorf("bullet count %d outside [%d,%d]", n, MinBullets, MaxBullets)
	}
	for i, b := range c.Bullets {
		w := WordCount(b)
		if w < MinBulletWords || w > MaxBulletWords {
			return fmt.Errorf("bullet %d has %d words, want [%d,%d]: %q",
				i, w, MinBulletWords, MaxBulletWords, b)
		}
	}
	if strings.TrimSpace(c.KeyMessage) == "" {
		return fmt.Errorf("key message is empty")
	}
	if c.Provenance != ProvenanceGenerated && c.Provenance != ProvenanceFallback {
		return fmt.Errorf("unknown provenance %q", c.Provenance)
	}
	return nil
}

// Slide is a plan entry merged with its content in the assembled result.
type Slide struct {
	Position   int        `json:"position"`
	Kind       SlideKind  `json:"kind"`
	Title      string     `json:"title"`
	Subtitle   string     `json:"subtitle,omitempty"`
	Bullets    []string   `json:"bullets"`
	KeyMessage string     `json:"key_message"`
	Provenance Provenance `json:"provenance"`
}

// Palette holds the five roles of the deck color scheme as hex strings.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
}

// ThemeSpec is the visual descriptor produced by the visual-spec stage.
// It is consumed only by rendering collaborators.
type ThemeSpec struct {
	Palette Palette  `json:"palette"`
	Fonts   []string `json:"fonts"`
	Style   string   `json:"style"`
}

// Statistics summarizes per-call outcomes for one workflow run.
// Attempts counts gateway invocations, including denied ones; fallback fills
// are tracked separately.
type Statistics struct {
	TotalAttempts  int     `json:"total_attempts"`
	Successful     int     `json:"successful"`
	FallbackUsed   int     `json:"fallback_used"`
	RateLimited    int     `json:"rate_limited"`
	Timeouts       int     `json:"timeouts"`
	Malformed      int     `json:"malformed"`
	UpstreamErrors int     `json:"upstream_errors"`
	SuccessRate    float64 `json:"success_rate"`
}

// Result is the assembled, ordered presentation handed to rendering
// collaborators. It is not modified after assembly.
type Result struct {
	RunID         string     `json:"run_id"`
	DocumentTitle string     `json:"document_title"`
	Themes        []string   `json:"themes"`
	Slides        []Slide    `json:"slides"`
	Theme         ThemeSpec  `json:"theme"`
	Stats         Statistics `json:"stats"`
	CreatedAt     time.Time  `json:"created_at"`
	Duration      int64      `json:"duration_ms"`
}
