// Package store persists search results and per-tweet translations as JSON
// files under a data directory, and records search runs in SQLite.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/echolens/tweetscope/pkg/analysis"
	"github.com/echolens/tweetscope/pkg/twitter"
)

// ErrNotFound marks a missing persisted file; the HTTP layer maps it to 404.
var ErrNotFound = errors.New("not found")

const (
	latestFilename = "latest_tweets.json"
	timestampFmt   = "2006-01-02_15-04-05"
	maxQueryLen    = 30
)

// SavedTweet is the allow-listed projection of a TweetRecord that goes into
// result files. Optional fields are omitted when never populated.
type SavedTweet struct {
	ID             string   `json:"id"`
	Text           string   `json:"text"`
	CleanedText    string   `json:"cleaned_text,omitempty"`
	FavoriteCount  int      `json:"favorite_count"`
	RetweetCount   int      `json:"retweet_count"`
	ReplyCount     int      `json:"reply_count"`
	Sentiment      string   `json:"sentiment,omitempty"`
	SentimentScore *float64 `json:"sentiment_score,omitempty"`
	OriginalLang   string   `json:"original_lang,omitempty"`
}

type Metadata struct {
	SearchQuery   string                  `json:"search_query"`
	Timestamp     string                  `json:"timestamp"`
	TotalTweets   int                     `json:"total_tweets"`
	LanguageStats []analysis.LanguageStat `json:"language_stats"`
}

// Envelope is the on-disk shape of one saved search result. Immutable once
// written.
type Envelope struct {
	Metadata Metadata     `json:"metadata"`
	Tweets   []SavedTweet `json:"tweets"`
}

// Translation is the per-tweet translation file shape.
type Translation struct {
	TweetID        string `json:"tweet_id"`
	OriginalLang   string `json:"original_lang"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	TranslatedAt   string `json:"translated_at"`
}

type Store struct {
	dataDir string
	logger  *log.Logger
	now     func() time.Time
}

func NewStore(logger *log.Logger, dataDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, "translations"), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}
	return &Store{dataDir: dataDir, logger: logger, now: time.Now}, nil
}

// SaveResult projects records onto the saved columns, wraps them in the
// metadata envelope and writes both the timestamped result file and the
// latest pointer file. The latest replace is atomic so readers never see a
// torn file. Returns the base name of the timestamped file.
func (s *Store) SaveResult(records []twitter.TweetRecord, query string, stats []analysis.LanguageStat) (string, error) {
	timestamp := s.now().Format(timestampFmt)
	envelope := Envelope{
		Metadata: Metadata{
			SearchQuery:   query,
			Timestamp:     timestamp,
			TotalTweets:   len(records),
			LanguageStats: stats,
		},
		Tweets: lo.Map(records, func(rec twitter.TweetRecord, _ int) SavedTweet {
			return projectTweet(rec)
		}),
	}

	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding result envelope")
	}

	filename := fmt.Sprintf("tweets_%s_%s.json", sanitizeQuery(query), timestamp)
	if err := os.WriteFile(filepath.Join(s.dataDir, filename), payload, 0o644); err != nil {
		return "", errors.Wrap(err, "writing result file")
	}

	if err := s.writeAtomic(latestFilename, payload); err != nil {
		return "", errors.Wrap(err, "writing latest file")
	}

	s.logger.Info("Saved search result", "file", filename, "tweets", len(records))
	return filename, nil
}

// Latest returns the most recently saved envelope, or ErrNotFound if no
// search has completed yet.
func (s *Store) Latest() (*Envelope, error) {
	payload, err := os.ReadFile(filepath.Join(s.dataDir, latestFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrNotFound, "no tweet data available yet")
		}
		return nil, errors.Wrap(err, "reading latest file")
	}

	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, errors.Wrap(err, "parsing latest file")
	}
	return &envelope, nil
}

func (s *Store) SaveTranslation(translation Translation) error {
	payload, err := json.MarshalIndent(translation, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding translation")
	}
	path := filepath.Join(s.dataDir, "translations", translation.TweetID+".json")
	return errors.Wrap(os.WriteFile(path, payload, 0o644), "writing translation file")
}

func (s *Store) Translation(id string) (*Translation, error) {
	payload, err := os.ReadFile(filepath.Join(s.dataDir, "translations", id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "translation %s", id)
		}
		return nil, errors.Wrap(err, "reading translation file")
	}

	var translation Translation
	if err := json.Unmarshal(payload, &translation); err != nil {
		return nil, errors.Wrap(err, "parsing translation file")
	}
	return &translation, nil
}

// ListTranslations returns the ids of all stored translations, sorted.
// A missing translations directory is an empty list, not an error.
func (s *Store) ListTranslations() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, "translations"))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(err, "listing translations")
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func projectTweet(rec twitter.TweetRecord) SavedTweet {
	saved := SavedTweet{
		ID:            rec.ID,
		Text:          rec.Text,
		CleanedText:   rec.CleanedText,
		FavoriteCount: rec.FavoriteCount,
		RetweetCount:  rec.RetweetCount,
		ReplyCount:    rec.ReplyCount,
		Sentiment:     rec.Sentiment,
		OriginalLang:  rec.OriginalLang,
	}
	if rec.Sentiment != "" {
		score := rec.SentimentScore
		saved.SentimentScore = &score
	}
	return saved
}

func sanitizeQuery(query string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	sanitized := replacer.Replace(query)
	if len(sanitized) > maxQueryLen {
		sanitized = sanitized[:maxQueryLen]
	}
	return sanitized
}

func (s *Store) writeAtomic(name string, payload []byte) error {
	tmp, err := os.CreateTemp(s.dataDir, name+".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dataDir, name))
}
