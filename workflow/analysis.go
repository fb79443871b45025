package workflow

import (
	"strings"
	"unicode"
)

// Section is one content region extracted from the input document.
type Section struct {
	Title      string
	Content    string
	WordCount  int
	Importance int
}

// Analysis is the output of the first pipeline stage: a document title, the
// detected themes and the sections worth a slide of their own.
type Analysis struct {
	DocumentTitle string
	Themes        []string
	Sections      []Section
	WordCount     int
}

// maxContentSections bounds how many document sections become content
// slides; with the title and conclusion slides this keeps the default deck
// at five slides.
const maxContentSections = 3

// themeKeywords maps a theme label to the lowercase trigger words that
// select it. Iteration order is fixed by themeOrder so theme detection is
// deterministic.
var themeKeywords = map[string][]string{
	"Business Strategy":   {"business", "strategy", "market", "competitive", "growth"},
	"Technology":          {"technology", "ai", "automation", "digital", "innovation"},
	"Data & Analytics":    {"data", "analytics", "insights", "metrics", "analysis"},
	"Customer Experience": {"customer", "experience", "satisfaction", "service"},
	"Finance":             {"finance", "revenue", "cost", "profit", "investment"},
	"Operations":          {"operations", "process", "efficiency", "workflow"},
	"Leadership":          {"leadership", "management", "team", "culture"},
}

var themeOrder = []string{
	"Business Strategy",
	"Technology",
	"Data & Analytics",
	"Customer Experience",
	"Finance",
	"Operations",
	"Leadership",
}

var importanceKeywords = []string{
	"important", "key", "critical", "essential", "main", "primary",
	"significant", "major", "crucial", "fundamental", "core",
}

// analyze derives the document title, themes and sections from raw text.
// The stage is purely local and deterministic; the generative upstream is
// only consulted later, per slide.
func analyze(text string) Analysis {
	title := extractTitle(text)
	themes := detectThemes(text)
	sections := extractSections(text)

	return Analysis{
		DocumentTitle: title,
		Themes:        themes,
		Sections:      sections,
		WordCount:     len(strings.Fields(text)),
	}
}

// extractTitle takes the first non-empty line, stripped of markdown heading
// markers and list numbering.
func extractTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line != "" {
			return line
		}
	}
	return "Untitled Presentation"
}

// detectThemes scans the document's words for theme trigger words and
// returns up to five matching theme labels, in fixed order. Triggers match
// whole words only, so "ai" does not fire inside "plain" or "maintain".
func detectThemes(text string) []string {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	var themes []string
	for _, theme := range themeOrder {
		for _, kw := range themeKeywords[theme] {
			if words[kw] {
				themes = append(themes, theme)
				break
			}
		}
		if len(themes) == 5 {
			break
		}
	}
	if len(themes) == 0 {
		return []string{"General Topics"}
	}
	return themes
}

// extractSections splits the document at header-like lines. A line counts as
// a header when it is all-uppercase, numbered, a markdown heading, or a
// short line that does not end a sentence. When more than
// maxContentSections remain, the highest importance*length sections win.
func extractSections(text string) []Section {
	var sections []Section
	var currentTitle string
	var currentBody []string

	flush := func() {
		if currentTitle == "" || len(currentBody) == 0 {
			return
		}
		body := strings.Join(currentBody, " ")
		sections = append(sections, Section{
			Title:      currentTitle,
			Content:    body,
			WordCount:  len(strings.Fields(body)),
			Importance: sectionImportance(body),
		})
	}

	titleSeen := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !titleSeen {
			// The first non-empty line is the document title, not a section.
			titleSeen = true
			continue
		}
		if looksLikeHeader(line) {
			flush()
			currentTitle = strings.TrimSpace(strings.TrimLeft(line, "#0123456789.) "))
			currentBody = nil
			continue
		}
		if currentTitle != "" {
			currentBody = append(currentBody, line)
		}
	}
	flush()

	if len(sections) > maxContentSections {
		// Stable selection: sort by score descending, keep document order
		// among the winners.
		type scored struct {
			idx   int
			score int
		}
		ranked := make([]scored, len(sections))
		for i, s := range sections {
			ranked[i] = scored{idx: i, score: s.Importance * s.WordCount}
		}
		for i := 0; i < len(ranked); i++ {
			for j := i + 1; j < len(ranked); j++ {
				if ranked[j].score > ranked[i].score {
					ranked[i], ranked[j] = ranked[j], ranked[i]
				}
			}
		}
		keep := make(map[int]bool, maxContentSections)
		for _, r := range ranked[:maxContentSections] {
			keep[r.idx] = true
		}
		trimmed := sections[:0]
		for i, s := range sections {
			if keep[i] {
				trimmed = append(trimmed, s)
			}
		}
		sections = trimmed
	}
	return sections
}

func looksLikeHeader(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	for _, prefix := range []string{"1.", "2.", "3.", "4.", "5.", "6.", "7.", "8.", "9."} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	if line == strings.ToUpper(line) && strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return true
	}
	return len(line) < 60 && !strings.HasSuffix(line, ".") &&
		!strings.HasPrefix(line, "•") && !strings.HasPrefix(line, "-")
}

func sectionImportance(content string) int {
	lower := strings.ToLower(content)
	score := 0
	for _, kw := range importanceKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	if score < 1 {
		return 1
	}
	return score
}
