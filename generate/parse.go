package generate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/deckforge/deckforge/deck"
	"github.com/deckforge/deckforge/llm"
)

// Schema describes the shape expected from the upstream for one slide.
type Schema struct {
	MinBullets     int
	MaxBullets     int
	MinBulletWords int
	MaxBulletWords int
}

// SlideSchema returns the schema every slide's content must satisfy.
func SlideSchema() Schema {
	return Schema{
		MinBullets:     deck.MinBullets,
		MaxBullets:     deck.MaxBullets,
		MinBulletWords: deck.MinBulletWords,
		MaxBulletWords: deck.MaxBulletWords,
	}
}

// payload is the strict JSON shape requested from the upstream. The
// bullet_points alias covers models that ignore the exact field name.
type payload struct {
	Subtitle     string   `json:"subtitle"`
	Bullets      []string `json:"bullets"`
	BulletPoints []string `json:"bullet_points"`
	KeyMessage   string   `json:"key_message"`
}

// bulletLinePattern matches bullet-like lines in free-form text: "• x",
// "- x", "* x", "1. x".
var bulletLinePattern = regexp.MustCompile(`^\s*(?:[•\-*]|\d+[.)])\s+(.{3,})$`)

// keyMessagePattern matches an inline key-message label.
var keyMessagePattern = regexp.MustCompile(`(?i)^\s*(?:key message|key insight|takeaway)\s*[:\-]\s*(.+)$`)

// parseContent turns raw model output into validated slide content. It tries
// a strict JSON parse first and falls back to extracting bullet-like lines
// before giving up as malformed.
func parseContent(raw string, schema Schema) (deck.Content, error) {
	if content, err := parseStrict(raw, schema); err == nil {
		return content, nil
	}

	content, err := parseHeuristic(raw, schema)
	if err != nil {
		return deck.Content{}, fmt.Errorf("malformed response: %w", err)
	}
	return content, nil
}

// parseStrict expects the requested JSON object, possibly fenced or noisy.
func parseStrict(raw string, schema Schema) (deck.Content, error) {
	extracted := llm.ExtractJSON(raw)
	if extracted == "" {
		return deck.Content{}, fmt.Errorf("no JSON object found")
	}

	var p payload
	if err := json.Unmarshal([]byte(extracted), &p); err != nil {
		return deck.Content{}, fmt.Errorf("unmarshal: %w", err)
	}

	bullets := p.Bullets
	if len(bullets) == 0 {
		bullets = p.BulletPoints
	}
	return normalize(bullets, p.KeyMessage, p.Subtitle, schema)
}

// parseHeuristic extracts bullet-like lines and a key message from prose.
func parseHeuristic(raw string, schema Schema) (deck.Content, error) {
	var bullets []string
	var keyMessage string

	for _, line := range strings.Split(raw, "\n") {
		if m := keyMessagePattern.FindStringSubmatch(line); m != nil {
			keyMessage = strings.TrimSpace(m[1])
			continue
		}
		if m := bulletLinePattern.FindStringSubmatch(line); m != nil {
			bullets = append(bullets, strings.TrimSpace(m[1]))
		}
	}

	if keyMessage == "" && len(bullets) > schema.MinBullets {
		// Treat a trailing extra bullet as the key message.
		keyMessage = deck.StripBulletMarker(bullets[len(bullets)-1])
		bullets = bullets[:len(bullets)-1]
	}

	return normalize(bullets, keyMessage, "", schema)
}

// normalize enforces the schema: markers stripped, overlong bullets
// truncated, short ones dropped, count bounded. A result that still cannot
// satisfy the schema is an error.
func normalize(bullets []string, keyMessage, subtitle string, schema Schema) (deck.Content, error) {
	cleaned := make([]string, 0, len(bullets))
	for _, b := range bullets {
		b = deck.StripBulletMarker(b)
		words := strings.Fields(b)
		if len(words) < schema.MinBulletWords {
			continue
		}
		if len(words) > schema.MaxBulletWords {
			words = words[:schema.MaxBulletWords]
		}
		cleaned = append(cleaned, strings.Join(words, " "))
		if len(cleaned) == schema.MaxBullets {
			break
		}
	}

	if len(cleaned) < schema.MinBullets {
		return deck.Content{}, fmt.Errorf("only %d usable bullets, want at least %d",
			len(cleaned), schema.MinBullets)
	}

	keyMessage = strings.TrimSpace(keyMessage)
	if keyMessage == "" {
		return deck.Content{}, fmt.Errorf("missing key message")
	}

	content := deck.Content{
		Bullets:    cleaned,
		KeyMessage: keyMessage,
		Subtitle:   strings.TrimSpace(subtitle),
		Provenance: deck.ProvenanceGenerated,
	}
	if err := content.Validate(); err != nil {
		return deck.Content{}, err
	}
	return content, nil
}
