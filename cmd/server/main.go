package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/echolens/tweetscope/pkg/ai"
	"github.com/echolens/tweetscope/pkg/analysis"
	"github.com/echolens/tweetscope/pkg/cleaner"
	"github.com/echolens/tweetscope/pkg/config"
	"github.com/echolens/tweetscope/pkg/pipeline"
	"github.com/echolens/tweetscope/pkg/server"
	"github.com/echolens/tweetscope/pkg/store"
	"github.com/echolens/tweetscope/pkg/translate"
	"github.com/echolens/tweetscope/pkg/twitter"
)

type options struct {
	Port    string `long:"port" description:"HTTP listen port (overrides PORT)"`
	DataDir string `long:"data-dir" description:"Data directory (overrides DATA_DIR)"`
	EnvFile string `long:"env-file" description:"Path to an env file to load before the config"`
	Verbose bool   `short:"v" long:"verbose" description:"Enable debug logging"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	level := log.InfoLevel
	if opts.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Level:           level,
		TimeFormat:      time.Kitchen,
	})

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			logger.Error("Failed to load env file", "path", opts.EnvFile, "error", err)
		}
	}

	envs, err := config.LoadConfig(opts.Verbose)
	if err != nil {
		panic(errors.Wrap(err, "Unable to load config"))
	}
	if opts.Port != "" {
		envs.Port = opts.Port
	}
	if opts.DataDir != "" {
		envs.DataDir = opts.DataDir
	}
	logger.Info("Config loaded", "data_dir", envs.DataDir, "port", envs.Port)

	resultStore, err := store.NewStore(logger, envs.DataDir)
	if err != nil {
		logger.Error("Unable to initialize data directory", "error", err)
		panic(errors.Wrap(err, "Unable to initialize data directory"))
	}

	history, err := store.NewHistory(envs.HistoryDBPath)
	if err != nil {
		logger.Error("Unable to initialize history database", "error", err)
		panic(errors.Wrap(err, "Unable to initialize history database"))
	}
	defer func() {
		if err := history.Close(); err != nil {
			logger.Error("Error closing history database", "error", err)
		}
	}()
	logger.Info("SQLite history database initialized", "path", envs.HistoryDBPath)

	twitterClient := twitter.NewClient(
		logger.With("component", "twitter"),
		envs.SearchBaseURL,
		envs.RapidAPIKey,
		envs.RapidAPIHost,
		twitter.WithHTTPClient(&http.Client{Timeout: envs.RequestTimeout}),
		twitter.WithMaxPages(envs.MaxPages),
		twitter.WithPageDelay(envs.PageDelay),
		twitter.WithTrendsURL(envs.TrendsURL),
	)

	var classifier analysis.Classifier = analysis.NewLexiconClassifier()
	var translator pipeline.Translator
	if envs.CompletionsAPIKey != "" {
		aiService := ai.NewOpenAIService(logger.With("component", "ai"), envs.CompletionsAPIKey, envs.CompletionsAPIURL)
		classifier = analysis.NewLLMClassifier(logger.With("component", "classifier"), aiService, envs.CompletionsModel)
		translator = translate.NewTranslator(logger.With("component", "translate"), aiService, resultStore, envs.CompletionsModel)
		logger.Info("LLM classifier enabled", "model", envs.CompletionsModel)
	} else {
		logger.Warn("COMPLETIONS_API_KEY not set, using lexicon classifier and skipping translations")
	}

	runner := pipeline.NewRunner(
		logger.With("component", "pipeline"),
		twitterClient,
		cleaner.NewCleaner(logger.With("component", "cleaner")),
		analysis.NewAnalyzer(logger.With("component", "analysis"), classifier),
		resultStore,
	).WithHistory(history)
	if translator != nil {
		runner.WithTranslator(translator)
	}

	srv := server.New(logger.With("component", "server"), runner, resultStore).
		WithTrends(twitterClient).
		WithHistory(history)

	httpServer := &http.Server{
		Addr:    ":" + envs.Port,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("Starting HTTP server", "address", "http://localhost:"+envs.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			panic(errors.Wrap(err, "Unable to start server"))
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	<-signalChan
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
}
