// Package render turns an assembled presentation into viewable documents.
// The pipeline itself stops at the deck.Result; everything markup-related
// lives here.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/deckforge/deckforge/deck"
)

// Markdown renders the deck as a plain markdown document, one section per
// slide. Useful on its own and as the input to the HTML renderer.
func Markdown(result *deck.Result) string {
	var b strings.Builder

	for i, slide := range result.Slides {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		if slide.Kind == deck.KindTitle {
			fmt.Fprintf(&b, "# %s\n\n", slide.Title)
			if slide.Subtitle != "" {
				fmt.Fprintf(&b, "*%s*\n\n", slide.Subtitle)
			}
		} else {
			fmt.Fprintf(&b, "## %s\n\n", slide.Title)
		}
		for _, bullet := range slide.Bullets {
			fmt.Fprintf(&b, "- %s\n", bullet)
		}
		fmt.Fprintf(&b, "\n> %s\n", slide.KeyMessage)
	}
	return b.String()
}

var pageTemplate = template.Must(template.New("deck").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body {
  font-family: {{.FontStack}};
  background: {{.Palette.Accent}};
  color: {{.Palette.Text}};
  margin: 0;
  padding: 2rem;
}
section.slide {
  background: {{.Palette.Background}};
  border-top: 6px solid {{.Palette.Primary}};
  border-radius: 8px;
  max-width: 52rem;
  margin: 0 auto 2rem;
  padding: 2rem 3rem;
}
section.slide h1, section.slide h2 { color: {{.Palette.Primary}}; }
section.slide blockquote {
  border-left: 4px solid {{.Palette.Secondary}};
  margin-left: 0;
  padding-left: 1rem;
  font-weight: 600;
}
footer { text-align: center; font-size: 0.8rem; color: {{.Palette.Secondary}}; }
</style>
</head>
<body>
{{range .Slides}}<section class="slide {{.Kind}}">
{{.Body}}</section>
{{end}}<footer>{{.Footer}}</footer>
</body>
</html>
`))

type pageData struct {
	Title     string
	FontStack template.CSS
	Palette   deck.Palette
	Slides    []slideData
	Footer    string
}

type slideData struct {
	Kind string
	Body template.HTML
}

// HTML renders the deck as a standalone styled page. Each slide's markdown
// is converted independently so one slide's odd content cannot bleed into
// the next section.
func HTML(result *deck.Result) (string, error) {
	md := goldmark.New()

	slides := make([]slideData, len(result.Slides))
	for i, slide := range result.Slides {
		single := deck.Result{Slides: []deck.Slide{slide}}
		var buf bytes.Buffer
		if err := md.Convert([]byte(Markdown(&single)), &buf); err != nil {
			return "", fmt.Errorf("render slide %d: %w", i, err)
		}
		slides[i] = slideData{
			Kind: string(slide.Kind),
			Body: template.HTML(buf.String()),
		}
	}

	data := pageData{
		Title:     result.DocumentTitle,
		FontStack: fontStack(result.Theme.Fonts),
		Palette:   result.Theme.Palette,
		Slides:    slides,
		Footer:    fmt.Sprintf("%d slides · %s", len(result.Slides), result.Theme.Style),
	}

	var out bytes.Buffer
	if err := pageTemplate.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return out.String(), nil
}

func fontStack(fonts []string) template.CSS {
	if len(fonts) == 0 {
		return "sans-serif"
	}
	return template.CSS(strings.Join(fonts, ", ") + ", sans-serif")
}
