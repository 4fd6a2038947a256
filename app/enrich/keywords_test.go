package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordRanker_Extract(t *testing.T) {
	r := NewKeywordRanker()

	kws, err := r.Extract("Microsoft profits soar on cloud growth", DefaultTopKeywords)
	require.NoError(t, err)
	assert.Equal(t, []string{"microsoft profits", "profits soar", "cloud growth"}, kws)

	kws, err = r.Extract("Microsoft profits soar on cloud growth", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"microsoft profits"}, kws)

	kws, err = r.Extract("Microsoft profits soar on cloud growth", 10)
	require.NoError(t, err)
	assert.Len(t, kws, 3, "phrases fully covered by chosen ones are skipped")
}

func TestKeywordRanker_Extract_TopN(t *testing.T) {
	r := NewKeywordRanker()
	text := "Regulators open an investigation into bundling of Teams. " +
		"The European Commission said Microsoft abused its dominant position; " +
		"rivals Slack and Zoom complained about unfair competition in 2020."

	for n := 1; n <= 5; n++ {
		kws, err := r.Extract(text, n)
		require.NoError(t, err)
		assert.Len(t, kws, n)
		for _, kw := range kws {
			assert.LessOrEqual(t, len(strings.Fields(kw)), 2, kw)
			assert.NotContains(t, kw, "2020")
			assert.Equal(t, strings.ToLower(kw), kw)
		}
	}
}

func TestKeywordRanker_Extract_Degenerate(t *testing.T) {
	r := NewKeywordRanker()

	tbl := []struct {
		name string
		text string
		topN int
	}{
		{name: "empty", text: "", topN: 3},
		{name: "spaces", text: "   \n\t", topN: 3},
		{name: "stop-words only", text: "it is what it is, and that is all", topN: 3},
		{name: "numbers only", text: "2024 - 15, 42", topN: 3},
		{name: "zero top", text: "Microsoft profits soar", topN: 0},
		{name: "negative top", text: "Microsoft profits soar", topN: -1},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			kws, err := r.Extract(tt.text, tt.topN)
			assert.Error(t, err)
			assert.NotNil(t, kws)
			assert.Empty(t, kws)
		})
	}
}
