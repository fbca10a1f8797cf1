// Package translate produces English translations of non-English tweets and
// stores them as per-tweet files. Translation is best effort and runs after
// the search result has already been persisted; a failure here never fails
// a pipeline run.
package translate

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"

	"github.com/echolens/tweetscope/pkg/ai"
	"github.com/echolens/tweetscope/pkg/store"
	"github.com/echolens/tweetscope/pkg/twitter"
)

const translatePrompt = `You translate social media posts into English.
Reply with the translation only, no commentary.`

type TranslationStore interface {
	SaveTranslation(translation store.Translation) error
}

type Translator struct {
	completions ai.Completion
	store       TranslationStore
	model       string
	logger      *log.Logger
	now         func() time.Time
}

func NewTranslator(logger *log.Logger, completions ai.Completion, translations TranslationStore, model string) *Translator {
	return &Translator{
		completions: completions,
		store:       translations,
		model:       model,
		logger:      logger,
		now:         time.Now,
	}
}

// TranslateAll translates every non-English record and stores the results.
// Returns the number of translations written; per-record failures are
// logged and skipped.
func (t *Translator) TranslateAll(ctx context.Context, records []twitter.TweetRecord) int {
	written := 0
	for _, rec := range records {
		if rec.OriginalLang == "" || rec.OriginalLang == "en" || rec.ID == "" {
			continue
		}
		if err := t.translateOne(ctx, rec); err != nil {
			t.logger.Error("Failed to translate tweet", "id", rec.ID, "lang", rec.OriginalLang, "error", err)
			continue
		}
		written++
	}
	if written > 0 {
		t.logger.Info("Stored translations", "count", written)
	}
	return written
}

func (t *Translator) translateOne(ctx context.Context, rec twitter.TweetRecord) error {
	text := rec.CleanedText
	if text == "" {
		text = rec.Text
	}

	message, err := t.completions.Completions(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(translatePrompt),
		openai.UserMessage(text),
	}, t.model)
	if err != nil {
		return err
	}

	return t.store.SaveTranslation(store.Translation{
		TweetID:        rec.ID,
		OriginalLang:   rec.OriginalLang,
		OriginalText:   rec.Text,
		TranslatedText: strings.TrimSpace(message.Content),
		TranslatedAt:   t.now().Format("2006-01-02_15-04-05"),
	})
}
