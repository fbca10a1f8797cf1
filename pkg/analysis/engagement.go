package analysis

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/echolens/tweetscope/pkg/twitter"
)

// SentimentSummary aggregates the per-record classifications.
type SentimentSummary struct {
	Total        int                `json:"total"`
	Counts       map[string]int     `json:"counts"`
	Percentages  map[string]float64 `json:"percentages"`
	AverageScore float64            `json:"average_score"`
	// NetScore is the engagement-weighted balance of positive vs
	// negative confidence, in [-1, 1].
	NetScore float64 `json:"net_score"`
}

// LabelEngagement summarizes engagement within one sentiment bucket.
type LabelEngagement struct {
	Count         int     `json:"count"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// TopTweet identifies the most engaged-with tweet of the dataset.
type TopTweet struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Sentiment  string `json:"sentiment"`
	Engagement int    `json:"engagement"`
}

// EngagementSummary aggregates the raw interaction counts.
type EngagementSummary struct {
	TotalFavorites int                        `json:"total_favorites"`
	TotalRetweets  int                        `json:"total_retweets"`
	TotalReplies   int                        `json:"total_replies"`
	TotalQuotes    int                        `json:"total_quotes"`
	TotalViews     int                        `json:"total_views"`
	AvgFavorites   float64                    `json:"avg_favorites"`
	AvgRetweets    float64                    `json:"avg_retweets"`
	AvgReplies     float64                    `json:"avg_replies"`
	BySentiment    map[string]LabelEngagement `json:"by_sentiment"`
	TopTweet       *TopTweet                  `json:"top_tweet,omitempty"`
}

// Report is the combined analysis payload returned to the API caller.
type Report struct {
	SentimentAnalysis SentimentSummary  `json:"sentiment_analysis"`
	EngagementMetrics EngagementSummary `json:"engagement_metrics"`
}

// Analyzer runs the classifier over a record sequence and summarizes
// sentiment alongside engagement.
type Analyzer struct {
	classifier Classifier
	logger     *log.Logger
}

func NewAnalyzer(logger *log.Logger, classifier Classifier) *Analyzer {
	return &Analyzer{classifier: classifier, logger: logger}
}

// Analyze classifies every record (annotating sentiment and score in
// place) and computes the combined report.
func (a *Analyzer) Analyze(ctx context.Context, records []twitter.TweetRecord) (*Report, error) {
	report := &Report{
		SentimentAnalysis: SentimentSummary{
			Counts:      map[string]int{LabelPositive: 0, LabelNeutral: 0, LabelNegative: 0},
			Percentages: map[string]float64{},
		},
		EngagementMetrics: EngagementSummary{
			BySentiment: map[string]LabelEngagement{},
		},
	}
	if len(records) == 0 {
		return report, nil
	}

	texts := lo.Map(records, func(rec twitter.TweetRecord, _ int) string {
		if rec.CleanedText != "" {
			return rec.CleanedText
		}
		return rec.Text
	})

	sentiments, err := a.classifier.Classify(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(sentiments) != len(records) {
		return nil, fmt.Errorf("classifier returned %d sentiments for %d records", len(sentiments), len(records))
	}

	total := len(records)
	report.SentimentAnalysis.Total = total

	scoreSum := 0.0
	weightedSum, weightTotal := 0.0, 0.0
	labelTotals := map[string]int{}
	labelEngagement := map[string]int{}
	var top *TopTweet

	for i := range records {
		records[i].Sentiment = sentiments[i].Label
		records[i].SentimentScore = sentiments[i].Score

		rec := records[i]
		engagement := rec.FavoriteCount + rec.RetweetCount + rec.ReplyCount + rec.QuoteCount

		report.SentimentAnalysis.Counts[rec.Sentiment]++
		scoreSum += rec.SentimentScore
		labelTotals[rec.Sentiment]++
		labelEngagement[rec.Sentiment] += engagement

		signed := 0.0
		switch rec.Sentiment {
		case LabelPositive:
			signed = rec.SentimentScore
		case LabelNegative:
			signed = -rec.SentimentScore
		}
		weight := float64(engagement + 1)
		weightedSum += signed * weight
		weightTotal += weight

		report.EngagementMetrics.TotalFavorites += rec.FavoriteCount
		report.EngagementMetrics.TotalRetweets += rec.RetweetCount
		report.EngagementMetrics.TotalReplies += rec.ReplyCount
		report.EngagementMetrics.TotalQuotes += rec.QuoteCount
		report.EngagementMetrics.TotalViews += rec.Views

		if top == nil || engagement > top.Engagement {
			top = &TopTweet{
				ID:         rec.ID,
				Text:       rec.Text,
				Sentiment:  rec.Sentiment,
				Engagement: engagement,
			}
		}
	}

	for label, count := range report.SentimentAnalysis.Counts {
		report.SentimentAnalysis.Percentages[label] = round1(float64(count) / float64(total) * 100)
	}
	report.SentimentAnalysis.AverageScore = scoreSum / float64(total)
	report.SentimentAnalysis.NetScore = weightedSum / weightTotal

	report.EngagementMetrics.AvgFavorites = round1(float64(report.EngagementMetrics.TotalFavorites) / float64(total))
	report.EngagementMetrics.AvgRetweets = round1(float64(report.EngagementMetrics.TotalRetweets) / float64(total))
	report.EngagementMetrics.AvgReplies = round1(float64(report.EngagementMetrics.TotalReplies) / float64(total))
	report.EngagementMetrics.TopTweet = top

	for label, count := range labelTotals {
		report.EngagementMetrics.BySentiment[label] = LabelEngagement{
			Count:         count,
			AvgEngagement: round1(float64(labelEngagement[label]) / float64(count)),
		}
	}

	a.logger.Debug("Analysis complete",
		"records", total,
		"positive", report.SentimentAnalysis.Counts[LabelPositive],
		"negative", report.SentimentAnalysis.Counts[LabelNegative])

	return report, nil
}
