// Package fallback synthesizes slide content from fixed phrasing templates.
// It is the degradation path for every failed generation call, so its output
// must satisfy the same structural bounds as generated content, and it must
// be fully deterministic: identical inputs always yield identical slides.
package fallback

import (
	"fmt"
	"strings"

	"github.com/deckforge/deckforge/deck"
)

// variant is one phrasing template set. Bullet and key-message templates may
// contain a single %s slot for a theme keyword; templates are sized so that
// any keyword of one to three words keeps bullets inside the word bounds.
type variant struct {
	bullets  []string
	key      string
	subtitle string
}

var titleVariants = []variant{
	{
		bullets: []string{
			"Why %s matters now",
			"Key %s themes covered",
			"Goals for this session",
			"What success looks like",
		},
		key:      "A practical look at %s",
		subtitle: "An overview of %s",
	},
	{
		bullets: []string{
			"Setting the %s context",
			"Core %s topics ahead",
			"Questions we will answer",
			"Outcomes to expect today",
		},
		key:      "Framing the %s conversation",
		subtitle: "A closer look at %s",
	},
}

var contentVariants = []variant{
	{
		bullets: []string{
			"Assess current %s capabilities",
			"Define clear %s goals",
			"Align teams around %s",
			"Measure %s progress continuously",
		},
		key: "Focus every effort on %s",
	},
	{
		bullets: []string{
			"Identify key %s opportunities",
			"Prioritize high impact %s work",
			"Build momentum with %s",
			"Review %s outcomes quarterly",
			"Share %s wins broadly",
		},
		key: "Let %s drive the next phase",
	},
	{
		bullets: []string{
			"Map the %s landscape",
			"Invest in %s capabilities",
			"Remove barriers to %s",
			"Track %s results openly",
		},
		key: "Sustained %s effort compounds",
	},
}

var conclusionVariants = []variant{
	{
		bullets: []string{
			"Recap the %s priorities",
			"Agree on next steps",
			"Assign clear owner accountability",
			"Schedule the follow up",
		},
		key: "Move from %s planning to action",
	},
	{
		bullets: []string{
			"Summarize key %s takeaways",
			"Confirm the decision points",
			"Commit to concrete timelines",
			"Revisit progress next quarter",
		},
		key: "The %s journey starts now",
	},
}

// genericKeywords stand in when the analysis produced no usable themes.
var genericKeywords = []string{
	"business value",
	"team execution",
	"customer impact",
	"operational excellence",
}

// Synthesizer produces template-based slide content. The zero value is ready
// to use; the constructor exists for symmetry with the other pipeline parts.
type Synthesizer struct{}

func New() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize builds content for one slide from its kind, the run's theme
// keywords and the slide position. The position selects the phrasing variant
// and rotates through the keywords, so consecutive slides read differently
// while two runs over the same input produce identical decks.
func (s *Synthesizer) Synthesize(kind deck.SlideKind, themeKeywords []string, position int) deck.Content {
	keywords := usableKeywords(themeKeywords)

	var variants []variant
	switch kind {
	case deck.KindTitle:
		variants = titleVariants
	case deck.KindConclusion:
		variants = conclusionVariants
	default:
		variants = contentVariants
	}
	v := variants[abs(position)%len(variants)]

	bullets := make([]string, len(v.bullets))
	for i, tmpl := range v.bullets {
		bullets[i] = fill(tmpl, keywords[(abs(position)+i)%len(keywords)])
	}

	primary := keywords[abs(position)%len(keywords)]
	return deck.Content{
		Bullets:    bullets,
		KeyMessage: fill(v.key, primary),
		Subtitle:   fill(v.subtitle, primary),
		Provenance: deck.ProvenanceFallback,
	}
}

// usableKeywords lowercases the themes and clamps each to three words so
// every template stays within the bullet bounds. Empty input falls back to
// generic business phrasing.
func usableKeywords(themes []string) []string {
	out := make([]string, 0, len(themes))
	for _, t := range themes {
		words := strings.Fields(strings.ToLower(t))
		if len(words) == 0 {
			continue
		}
		if len(words) > 3 {
			words = words[:3]
		}
		out = append(out, strings.Join(words, " "))
	}
	if len(out) == 0 {
		return genericKeywords
	}
	return out
}

func fill(tmpl, keyword string) string {
	if tmpl == "" || !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, keyword)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
