package analysis

import (
	"math"
	"sort"

	"github.com/echolens/tweetscope/pkg/twitter"
)

// LanguageStat is one row of the per-dataset language distribution.
type LanguageStat struct {
	Language   string  `json:"language"`
	Code       string  `json:"code"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"ar": "Arabic",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"th": "Thai",
	"bn": "Bengali",
	"ta": "Tamil",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
}

// LanguageName maps a known ISO code to its display name; unknown codes
// pass through unchanged.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// LanguageStats computes the language distribution of a record sequence,
// largest group first. Percentages are rounded to one decimal and always
// sum to 100 for non-empty input.
func LanguageStats(records []twitter.TweetRecord) []LanguageStat {
	if len(records) == 0 {
		return []LanguageStat{}
	}

	counts := make(map[string]int)
	for _, rec := range records {
		code := rec.OriginalLang
		if code == "" {
			code = "en"
		}
		counts[code]++
	}

	stats := make([]LanguageStat, 0, len(counts))
	total := len(records)
	for code, count := range counts {
		stats = append(stats, LanguageStat{
			Language:   LanguageName(code),
			Code:       code,
			Count:      count,
			Percentage: round1(float64(count) / float64(total) * 100),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Code < stats[j].Code
	})

	// Rounding each share independently can drift the total off 100;
	// fold the residual into the largest group.
	sum := 0.0
	for _, s := range stats {
		sum += s.Percentage
	}
	stats[0].Percentage = round1(stats[0].Percentage + 100 - sum)

	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
