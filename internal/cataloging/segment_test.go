package cataloging

import (
	"testing"

	"github.com/lehigh-university-libraries/lotcataloger/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	p := config.Default().Generation.Placeholders

	tests := []struct {
		name     string
		text     string
		expected Tiers
	}{
		{
			name:     "blank lines dropped and extra lines ignored",
			text:     "Line1\n\nLine2\nLine3\nLine4",
			expected: Tiers{BaseCaption: "Line1", RefinedText: "Line2", EnhancedDescription: "Line3"},
		},
		{
			name:     "single line",
			text:     "OnlyLine",
			expected: Tiers{BaseCaption: "OnlyLine", RefinedText: p.Refined, EnhancedDescription: p.Enhanced},
		},
		{
			name:     "two lines with surrounding whitespace",
			text:     "  Bronze bust  \r\n\t Refined text \r\n",
			expected: Tiers{BaseCaption: "Bronze bust", RefinedText: "Refined text", EnhancedDescription: p.Enhanced},
		},
		{
			name:     "empty text",
			text:     "",
			expected: Tiers{BaseCaption: p.Caption, RefinedText: p.Refined, EnhancedDescription: p.Enhanced},
		},
		{
			name:     "only whitespace",
			text:     "\n   \n\t\n",
			expected: Tiers{BaseCaption: p.Caption, RefinedText: p.Refined, EnhancedDescription: p.Enhanced},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Segment(tt.text, p))
		})
	}
}

func TestSegmentNeverReturnsEmptyTiers(t *testing.T) {
	p := config.Default().Generation.Placeholders
	for _, text := range []string{"", "a", "a\nb", "a\nb\nc", "\n\n\n\n"} {
		tiers := Segment(text, p)
		assert.NotEmpty(t, tiers.BaseCaption)
		assert.NotEmpty(t, tiers.RefinedText)
		assert.NotEmpty(t, tiers.EnhancedDescription)
	}
}
