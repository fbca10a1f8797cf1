// Package pipeline drives one search request end to end: fetch, clean,
// classify, aggregate, persist. Execution is synchronous and
// request-scoped; a run completes (or fails) before the HTTP response goes
// out.
package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/echolens/tweetscope/pkg/analysis"
	"github.com/echolens/tweetscope/pkg/store"
	"github.com/echolens/tweetscope/pkg/twitter"
)

type Fetcher interface {
	Search(ctx context.Context, query string) ([]twitter.TweetRecord, error)
}

type Cleaner interface {
	Clean(records []twitter.TweetRecord) []twitter.TweetRecord
}

type Analyzer interface {
	Analyze(ctx context.Context, records []twitter.TweetRecord) (*analysis.Report, error)
}

type ResultStore interface {
	SaveResult(records []twitter.TweetRecord, query string, stats []analysis.LanguageStat) (string, error)
}

type RunRecorder interface {
	Record(ctx context.Context, run store.SearchRun) error
}

type Translator interface {
	TranslateAll(ctx context.Context, records []twitter.TweetRecord) int
}

// TweetsData describes where a run's records were persisted.
type TweetsData struct {
	Filename    string `json:"filename"`
	Count       int    `json:"count"`
	SearchQuery string `json:"search_query"`
}

// Result is the payload of a successful run.
type Result struct {
	SentimentAnalysis analysis.SentimentSummary  `json:"sentiment_analysis"`
	EngagementMetrics analysis.EngagementSummary `json:"engagement_metrics"`
	TweetsData        TweetsData                 `json:"tweets_data"`
}

type Runner struct {
	fetcher    Fetcher
	cleaner    Cleaner
	analyzer   Analyzer
	results    ResultStore
	history    RunRecorder // optional
	translator Translator  // optional
	logger     *log.Logger
}

func NewRunner(logger *log.Logger, fetcher Fetcher, cleaner Cleaner, analyzer Analyzer, results ResultStore) *Runner {
	return &Runner{
		fetcher:  fetcher,
		cleaner:  cleaner,
		analyzer: analyzer,
		results:  results,
		logger:   logger,
	}
}

// WithHistory records completed runs in the given recorder.
func (r *Runner) WithHistory(history RunRecorder) *Runner {
	r.history = history
	return r
}

// WithTranslator stores English translations of non-English tweets after
// each run.
func (r *Runner) WithTranslator(translator Translator) *Runner {
	r.translator = translator
	return r
}

// Run executes the full pipeline for one query.
func (r *Runner) Run(ctx context.Context, query string) (*Result, error) {
	runID := uuid.New().String()
	logger := r.logger.With("run_id", runID, "query", query)
	started := time.Now()

	records, err := r.fetcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	logger.Info("Fetched tweets", "count", len(records))

	records = r.cleaner.Clean(records)

	report, err := r.analyzer.Analyze(ctx, records)
	if err != nil {
		return nil, errors.Wrap(err, "analyzing tweets")
	}

	stats := analysis.LanguageStats(records)

	filename, err := r.results.SaveResult(records, query, stats)
	if err != nil {
		return nil, errors.Wrap(err, "saving tweets")
	}

	if r.history != nil {
		err := r.history.Record(ctx, store.SearchRun{
			ID:         runID,
			Query:      query,
			Filename:   filename,
			TweetCount: len(records),
			CreatedAt:  time.Now(),
		})
		if err != nil {
			logger.Error("Failed to record search run", "error", err)
		}
	}

	if r.translator != nil {
		r.translator.TranslateAll(ctx, records)
	}

	logger.Info("Pipeline run complete", "tweets", len(records), "file", filename, "took", time.Since(started))

	return &Result{
		SentimentAnalysis: report.SentimentAnalysis,
		EngagementMetrics: report.EngagementMetrics,
		TweetsData: TweetsData{
			Filename:    filename,
			Count:       len(records),
			SearchQuery: query,
		},
	}, nil
}
