package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"

	"github.com/echolens/tweetscope/pkg/ai"
)

const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// Sentiment is one classification result: a label from the
// positive/neutral/negative set and a confidence score in [0, 1].
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier assigns a sentiment to each input text. Implementations must
// return exactly one result per input, in order.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]Sentiment, error)
}

// LLMClassifier classifies batches of tweets with a single chat
// completion.
type LLMClassifier struct {
	completions ai.Completion
	model       string
	logger      *log.Logger
}

var _ Classifier = (*LLMClassifier)(nil)

func NewLLMClassifier(logger *log.Logger, completions ai.Completion, model string) *LLMClassifier {
	return &LLMClassifier{
		completions: completions,
		model:       model,
		logger:      logger,
	}
}

const classifyPrompt = `You are a sentiment classifier for short social media posts.
For each numbered post, respond with its sentiment.
Reply with a JSON array only, one object per post, in order:
[{"label": "positive"|"neutral"|"negative", "score": <confidence 0..1>}]`

func (c *LLMClassifier) Classify(ctx context.Context, texts []string) ([]Sentiment, error) {
	if len(texts) == 0 {
		return []Sentiment{}, nil
	}

	var sb strings.Builder
	for i, text := range texts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.ReplaceAll(text, "\n", " "))
	}

	message, err := c.completions.Completions(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(classifyPrompt),
		openai.UserMessage(sb.String()),
	}, c.model)
	if err != nil {
		return nil, fmt.Errorf("sentiment classification failed: %w", err)
	}

	results, err := parseSentiments(message.Content)
	if err != nil {
		return nil, err
	}
	if len(results) != len(texts) {
		return nil, fmt.Errorf("classifier returned %d results for %d texts", len(results), len(texts))
	}
	return results, nil
}

func parseSentiments(content string) ([]Sentiment, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var results []Sentiment
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &results); err != nil {
		return nil, fmt.Errorf("unparseable classifier response: %w", err)
	}
	for i := range results {
		switch results[i].Label {
		case LabelPositive, LabelNeutral, LabelNegative:
		default:
			results[i].Label = LabelNeutral
		}
		if results[i].Score < 0 {
			results[i].Score = 0
		}
		if results[i].Score > 1 {
			results[i].Score = 1
		}
	}
	return results, nil
}

// LexiconClassifier is a deterministic word-list fallback used when no
// completions API key is configured.
type LexiconClassifier struct{}

var _ Classifier = (*LexiconClassifier)(nil)

func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{}
}

var positiveWords = wordSet(
	"good", "great", "love", "loved", "loving", "awesome", "amazing",
	"excellent", "best", "happy", "beautiful", "fantastic", "wonderful",
	"win", "winning", "won", "nice", "brilliant", "superb", "perfect",
	"thanks", "thank", "congratulations", "congrats", "enjoy", "enjoyed",
)

var negativeWords = wordSet(
	"bad", "terrible", "hate", "hated", "awful", "worst", "sad", "angry",
	"horrible", "disappointing", "disappointed", "lose", "losing", "lost",
	"poor", "shame", "disgrace", "disgusting", "fail", "failed", "failure",
	"boring", "pathetic", "useless", "broken",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func (c *LexiconClassifier) Classify(_ context.Context, texts []string) ([]Sentiment, error) {
	results := make([]Sentiment, len(texts))
	for i, text := range texts {
		results[i] = scoreLexicon(text)
	}
	return results, nil
}

func scoreLexicon(text string) Sentiment {
	pos, neg := 0, 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()[]")
		if _, ok := positiveWords[word]; ok {
			pos++
		}
		if _, ok := negativeWords[word]; ok {
			neg++
		}
	}

	switch {
	case pos > neg:
		return Sentiment{Label: LabelPositive, Score: float64(pos) / float64(pos+neg)}
	case neg > pos:
		return Sentiment{Label: LabelNegative, Score: float64(neg) / float64(pos+neg)}
	case pos == 0:
		return Sentiment{Label: LabelNeutral, Score: 1}
	default:
		return Sentiment{Label: LabelNeutral, Score: 0.5}
	}
}
