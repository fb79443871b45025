package generate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/deckforge/deck"
)

func TestParseContent_StrictJSON(t *testing.T) {
	raw := "```json\n" + `{
		"bullets": [
			"Accelerate digital care delivery",
			"Reduce administrative overhead significantly",
			"Improve patient outcome tracking",
			"Enable data driven decisions"
		],
		"key_message": "Technology transforms how care is delivered"
	}` + "\n```"

	content, err := parseContent(raw, SlideSchema())
	require.NoError(t, err)
	assert.Len(t, content.Bullets, 4)
	assert.Equal(t, "Technology transforms how care is delivered", content.KeyMessage)
	assert.Equal(t, deck.ProvenanceGenerated, content.Provenance)
	assert.NoError(t, content.Validate())
}

func TestParseContent_BulletPointsAlias(t *testing.T) {
	raw := `{
		"bullet_points": [
			"• Streamline clinical workflow automation",
			"• Connect disparate health systems",
			"• Protect sensitive patient data",
			"• Scale telehealth service delivery"
		],
		"key_message": "Integration unlocks better care"
	}`

	content, err := parseContent(raw, SlideSchema())
	require.NoError(t, err)
	require.Len(t, content.Bullets, 4)
	// Markers are stripped during normalization.
	assert.Equal(t, "Streamline clinical workflow automation", content.Bullets[0])
}

func TestParseContent_TruncatesOverlongBullets(t *testing.T) {
	raw := `{
		"bullets": [
			"This bullet goes on far too long to fit on any slide at all",
			"Second point stays short",
			"Third point stays short",
			"Fourth point stays short"
		],
		"key_message": "Brevity wins"
	}`

	content, err := parseContent(raw, SlideSchema())
	require.NoError(t, err)
	assert.Equal(t, deck.MaxBulletWords, deck.WordCount(content.Bullets[0]))
	assert.NoError(t, content.Validate())
}

func TestParseContent_DropsTooShortBullets(t *testing.T) {
	raw := `{
		"bullets": [
			"Too short",
			"First real point here",
			"Second real point here",
			"Third real point here",
			"Fourth real point here"
		],
		"key_message": "Short bullets are noise"
	}`

	content, err := parseContent(raw, SlideSchema())
	require.NoError(t, err)
	assert.Len(t, content.Bullets, 4)
	for _, b := range content.Bullets {
		assert.NotEqual(t, "Too short", b)
	}
}

func TestParseContent_CapsBulletCount(t *testing.T) {
	bullets := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		bullets = append(bullets, `"Point number `+strings.Repeat("x ", 2)+`here"`)
	}
	raw := `{"bullets": [` + strings.Join(bullets, ",") + `], "key_message": "m"}`

	content, err := parseContent(raw, SlideSchema())
	require.NoError(t, err)
	assert.Len(t, content.Bullets, deck.MaxBullets)
}

func TestParseContent_HeuristicBulletLines(t *testing.T) {
	raw := `Here are the slide points:

• Modernize legacy record systems
• Empower clinicians with insights
• Automate routine intake tasks
• Measure outcomes in real time

Key message: Modernization starts with the data layer`

	content, err := parseContent(raw, SlideSchema())
	require.NoError(t, err)
	assert.Len(t, content.Bullets, 4)
	assert.Equal(t, "Modernization starts with the data layer", content.KeyMessage)
	assert.NoError(t, content.Validate())
}

func TestParseContent_HeuristicTrailingBulletBecomesKeyMessage(t *testing.T) {
	raw := `1. Modernize legacy record systems
2. Empower clinicians with insights
3. Automate routine intake tasks
4. Measure outcomes in real time
5. Data drives every improvement`

	content, err := parseContent(raw, SlideSchema())
	require.NoError(t, err)
	assert.Len(t, content.Bullets, 4)
	assert.Equal(t, "Data drives every improvement", content.KeyMessage)
}

func TestParseContent_Malformed(t *testing.T) {
	cases := map[string]string{
		"prose only":       "I could not produce the content you asked for.",
		"too few bullets":  `{"bullets": ["Only one usable point"], "key_message": "m"}`,
		"no key message":   `{"bullets": ["One two three", "Four five six", "Seven eight nine", "Ten eleven twelve"]}`,
		"empty response":   "",
		"json wrong shape": `{"slides": [1, 2, 3]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseContent(raw, SlideSchema())
			assert.Error(t, err)
		})
	}
}
