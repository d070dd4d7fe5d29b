package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		{raw: "pricing", want: Pricing},
		{raw: "  Troubleshooting\n", want: Troubleshooting},
		{raw: "\"comparison\".", want: Comparison},
		{raw: "**setup**", want: Setup},
		{raw: "", want: General},
		{raw: "pricing and specs", want: General},
		{raw: "weather", want: General},
		{raw: "error", want: General},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestEveryCategoryHasDescriptionAndGlyph(t *testing.T) {
	for _, c := range All {
		assert.NotEmpty(t, descriptions[c], c)
		assert.NotEmpty(t, c.Glyph(), c)
	}
	assert.False(t, Error.Valid())
	assert.Empty(t, Error.Glyph())
	assert.Equal(t, "General iPad information", Category("nope").Description())
}
