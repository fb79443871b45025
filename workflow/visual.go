package workflow

import (
	"github.com/deckforge/deckforge/deck"
)

// Theme palettes keyed by the dominant detected theme. Rendering
// collaborators consume these; the pipeline itself only selects them.
var (
	technologyPalette = deck.Palette{
		Primary:    "#1E3A8A",
		Secondary:  "#3B82F6",
		Background: "#FFFFFF",
		Text:       "#1F2937",
		Accent:     "#E5E7EB",
	}
	financePalette = deck.Palette{
		Primary:    "#065F46",
		Secondary:  "#10B981",
		Background: "#FFFFFF",
		Text:       "#1F2937",
		Accent:     "#F3F4F6",
	}
	defaultPalette = deck.Palette{
		Primary:    "#1F2937",
		Secondary:  "#4B5563",
		Background: "#FFFFFF",
		Text:       "#1F2937",
		Accent:     "#E5E7EB",
	}
)

var themeFonts = []string{"Arial", "Calibri", "Helvetica"}

// themeSpec derives the visual descriptor from the detected themes. Purely
// deterministic; the first matching theme wins.
func themeSpec(themes []string) deck.ThemeSpec {
	for _, t := range themes {
		switch t {
		case "Technology":
			return deck.ThemeSpec{
				Palette: technologyPalette,
				Fonts:   themeFonts,
				Style:   "Modern, tech-forward, clean lines",
			}
		case "Finance":
			return deck.ThemeSpec{
				Palette: financePalette,
				Fonts:   themeFonts,
				Style:   "Corporate, professional, authoritative",
			}
		}
	}
	return deck.ThemeSpec{
		Palette: defaultPalette,
		Fonts:   themeFonts,
		Style:   "Clean, professional, approachable",
	}
}
