package cleaner

import (
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/echolens/tweetscope/pkg/twitter"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips urls", "check this https://t.co/abc123 out", "check this out"},
		{"strips mentions", "@alice thanks for the tip @bob", "thanks for the tip"},
		{"unwraps hashtags", "loving the #monsoon season", "loving the monsoon season"},
		{"drops rt prefix", "RT @someone: original text", ": original text"},
		{"collapses whitespace", "too   many\n\nspaces", "too many spaces"},
		{"empty input", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanText(tc.in))
		})
	}
}

func TestDetectLang(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"english", "the weather is lovely today", "en"},
		{"hindi", "आज मौसम बहुत अच्छा है", "hi"},
		{"arabic", "الطقس جميل اليوم", "ar"},
		{"russian", "сегодня прекрасная погода", "ru"},
		{"japanese", "今日はいい天気ですね", "ja"},
		{"korean", "오늘 날씨가 좋네요", "ko"},
		{"mostly latin with emoji", "great game tonight 🏏🏏", "en"},
		{"numbers only", "12345 !!!", "en"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectLang(tc.in))
		})
	}
}

func TestCleanAnnotatesInPlace(t *testing.T) {
	logger := log.New(os.Stdout)
	records := []twitter.TweetRecord{
		{ID: "1", Text: "RT @fan: अच्छा मैच https://t.co/xyz"},
		{ID: "2", Text: "what a match #cricket"},
	}

	out := NewCleaner(logger).Clean(records)

	assert.Equal(t, "hi", out[0].OriginalLang)
	assert.NotContains(t, out[0].CleanedText, "https://")
	assert.NotContains(t, out[0].CleanedText, "@fan")
	assert.Equal(t, "en", out[1].OriginalLang)
	assert.Equal(t, "what a match cricket", out[1].CleanedText)
}
