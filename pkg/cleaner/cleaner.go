// Package cleaner prepares raw tweet text for analysis: it strips noise
// (URLs, mentions, retweet markers) into cleaned_text and tags each record
// with the language it appears to be written in.
package cleaner

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/echolens/tweetscope/pkg/twitter"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	retweetPattern = regexp.MustCompile(`^RT\s+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

type Cleaner struct {
	logger *log.Logger
}

func NewCleaner(logger *log.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean annotates every record in place with cleaned_text and
// original_lang and returns the same slice.
func (c *Cleaner) Clean(records []twitter.TweetRecord) []twitter.TweetRecord {
	for i := range records {
		records[i].CleanedText = CleanText(records[i].Text)
		// Detect on the cleaned text so URLs and mentions do not skew
		// the script counts toward Latin.
		records[i].OriginalLang = DetectLang(records[i].CleanedText)
	}
	c.logger.Debug("Cleaned records", "count", len(records))
	return records
}

// CleanText strips URLs, @mentions and the leading RT marker, unwraps
// hashtags to their bare word and collapses whitespace.
func CleanText(text string) string {
	cleaned := retweetPattern.ReplaceAllString(text, "")
	cleaned = urlPattern.ReplaceAllString(cleaned, "")
	cleaned = mentionPattern.ReplaceAllString(cleaned, "")
	cleaned = hashtagPattern.ReplaceAllString(cleaned, "$1")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

var scripts = []struct {
	table *unicode.RangeTable
	code  string
}{
	{unicode.Devanagari, "hi"},
	{unicode.Arabic, "ar"},
	{unicode.Cyrillic, "ru"},
	{unicode.Han, "zh"},
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Thai, "th"},
	{unicode.Bengali, "bn"},
	{unicode.Tamil, "ta"},
}

// DetectLang tags text with an ISO 639-1 code based on its dominant
// script. Latin-script text defaults to "en"; the tag feeds display stats
// and the translation step, so a coarse guess is acceptable.
func DetectLang(text string) string {
	counts := make(map[string]int, len(scripts))
	total := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		for _, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[s.code]++
				break
			}
		}
	}
	if total == 0 {
		return "en"
	}

	best, bestCount := "", 0
	for code, n := range counts {
		if n > bestCount || (n == bestCount && code < best) {
			best, bestCount = code, n
		}
	}
	// Mixed tweets (hashtags, borrowed words) still carry plenty of Latin
	// characters; only tag non-English when the script clearly dominates.
	if bestCount*3 >= total {
		return best
	}
	return "en"
}
