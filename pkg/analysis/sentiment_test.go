package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconClassifier(t *testing.T) {
	classifier := NewLexiconClassifier()

	cases := []struct {
		name      string
		text      string
		wantLabel string
	}{
		{"positive", "what an amazing win, best match ever", LabelPositive},
		{"negative", "terrible performance, worst bowling I have seen", LabelNegative},
		{"neutral no hits", "the match starts at nine tomorrow", LabelNeutral},
		{"neutral balanced", "good batting but terrible fielding", LabelNeutral},
		{"punctuation stripped", "Amazing!", LabelPositive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := classifier.Classify(context.Background(), []string{tc.text})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tc.wantLabel, results[0].Label)
			assert.GreaterOrEqual(t, results[0].Score, 0.0)
			assert.LessOrEqual(t, results[0].Score, 1.0)
		})
	}
}

func TestLexiconClassifierOneResultPerInput(t *testing.T) {
	texts := []string{"love it", "hate it", "meh"}
	results, err := NewLexiconClassifier().Classify(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, results, len(texts))
}

func TestParseSentiments(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		results, err := parseSentiments(`[{"label":"positive","score":0.9},{"label":"negative","score":0.8}]`)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, LabelPositive, results[0].Label)
		assert.InDelta(t, 0.9, results[0].Score, 0.001)
	})

	t.Run("fenced json", func(t *testing.T) {
		results, err := parseSentiments("```json\n[{\"label\":\"neutral\",\"score\":0.5}]\n```")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, LabelNeutral, results[0].Label)
	})

	t.Run("unknown label coerced to neutral", func(t *testing.T) {
		results, err := parseSentiments(`[{"label":"ecstatic","score":2.5}]`)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, LabelNeutral, results[0].Label)
		assert.Equal(t, 1.0, results[0].Score)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseSentiments("I think they are all happy")
		assert.Error(t, err)
	})
}
