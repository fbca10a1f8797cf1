package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echolens/tweetscope/pkg/analysis"
	"github.com/echolens/tweetscope/pkg/twitter"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(log.New(os.Stdout), t.TempDir())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC) }
	return s
}

func sampleRecords() []twitter.TweetRecord {
	return []twitter.TweetRecord{
		{
			ID: "1", Text: "loving this", CleanedText: "loving this",
			FavoriteCount: 3, RetweetCount: 1, ReplyCount: 0,
			Sentiment: "positive", SentimentScore: 0.9, OriginalLang: "en",
			UserName: "Alice", UserFollowers: 1200, Views: 500,
		},
		{
			ID: "2", Text: "बहुत बुरा", CleanedText: "बहुत बुरा",
			FavoriteCount: 0, RetweetCount: 0, ReplyCount: 2,
			Sentiment: "negative", SentimentScore: 0.7, OriginalLang: "hi",
		},
	}
}

func TestSaveResultAndLatest(t *testing.T) {
	s := testStore(t)
	records := sampleRecords()
	stats := analysis.LanguageStats(records)

	filename, err := s.SaveResult(records, "ind vs aus", stats)
	require.NoError(t, err)
	assert.Equal(t, "tweets_ind_vs_aus_2026-08-25_14-30-00.json", filename)

	envelope, err := s.Latest()
	require.NoError(t, err)

	assert.Equal(t, "ind vs aus", envelope.Metadata.SearchQuery)
	assert.Equal(t, "2026-08-25_14-30-00", envelope.Metadata.Timestamp)
	assert.Equal(t, len(records), envelope.Metadata.TotalTweets)
	assert.Len(t, envelope.Tweets, len(records))
	assert.Len(t, envelope.Metadata.LanguageStats, 2)

	assert.Equal(t, "1", envelope.Tweets[0].ID)
	assert.Equal(t, "positive", envelope.Tweets[0].Sentiment)
	require.NotNil(t, envelope.Tweets[0].SentimentScore)
	assert.InDelta(t, 0.9, *envelope.Tweets[0].SentimentScore, 0.001)
}

func TestSaveResultAllowList(t *testing.T) {
	s := testStore(t)
	_, err := s.SaveResult(sampleRecords(), "allowlist", nil)
	require.NoError(t, err)

	payload, err := os.ReadFile(filepath.Join(s.dataDir, latestFilename))
	require.NoError(t, err)

	var raw struct {
		Tweets []map[string]any `json:"tweets"`
	}
	require.NoError(t, json.Unmarshal(payload, &raw))

	allowed := map[string]struct{}{
		"id": {}, "text": {}, "cleaned_text": {},
		"favorite_count": {}, "retweet_count": {}, "reply_count": {},
		"sentiment": {}, "sentiment_score": {}, "original_lang": {},
	}
	for _, tweet := range raw.Tweets {
		for key := range tweet {
			_, ok := allowed[key]
			assert.True(t, ok, "unexpected persisted field %q", key)
		}
	}
	// Author metadata and view counts never leave the process.
	assert.NotContains(t, string(payload), "user_name")
	assert.NotContains(t, string(payload), "views")
}

func TestSaveResultOverwritesLatest(t *testing.T) {
	s := testStore(t)

	_, err := s.SaveResult(sampleRecords(), "first", nil)
	require.NoError(t, err)
	_, err = s.SaveResult(sampleRecords()[:1], "second", nil)
	require.NoError(t, err)

	envelope, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "second", envelope.Metadata.SearchQuery)
	assert.Equal(t, 1, envelope.Metadata.TotalTweets)
}

func TestLatestNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Latest()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSanitizeQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ind vs aus", "ind_vs_aus"},
		{"a/b\\c d", "a_b_c_d"},
		{"0123456789012345678901234567890123456789", "012345678901234567890123456789"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeQuery(tc.in))
	}
}

func TestTranslations(t *testing.T) {
	s := testStore(t)

	t.Run("missing translation", func(t *testing.T) {
		_, err := s.Translation("nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty listing", func(t *testing.T) {
		ids, err := s.ListTranslations()
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("save get list", func(t *testing.T) {
		translation := Translation{
			TweetID:        "42",
			OriginalLang:   "hi",
			OriginalText:   "बहुत अच्छा",
			TranslatedText: "very good",
			TranslatedAt:   "2026-08-25_14-30-00",
		}
		require.NoError(t, s.SaveTranslation(translation))
		require.NoError(t, s.SaveTranslation(Translation{TweetID: "7", OriginalLang: "ar"}))

		got, err := s.Translation("42")
		require.NoError(t, err)
		assert.Equal(t, translation, *got)

		ids, err := s.ListTranslations()
		require.NoError(t, err)
		assert.Equal(t, []string{"42", "7"}, ids)
	})
}

func TestListTranslationsMissingDir(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.RemoveAll(filepath.Join(s.dataDir, "translations")))

	ids, err := s.ListTranslations()
	require.NoError(t, err)
	assert.Empty(t, ids)
}
