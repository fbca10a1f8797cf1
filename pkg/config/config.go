package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DataDir           string
	HistoryDBPath     string
	RapidAPIKey       string
	RapidAPIHost      string
	SearchBaseURL     string
	TrendsURL         string
	MaxPages          int
	PageDelay         time.Duration
	RequestTimeout    time.Duration
	CompletionsAPIURL string
	CompletionsAPIKey string
	CompletionsModel  string
}

func getEnv(key, defaultValue string, printEnv bool) string {
	logger := log.Default()
	value := os.Getenv(key)
	if printEnv {
		logger.Info("Env", "key", key, "value", value)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvOrPanic(key string, printEnv bool) string {
	value := getEnv(key, "", printEnv)
	if value == "" {
		panic(fmt.Sprintf("Environment variable %s is not set", key))
	}
	return value
}

func getEnvInt(key string, defaultValue int, printEnv bool) int {
	value := getEnv(key, "", printEnv)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration, printEnv bool) time.Duration {
	value := getEnv(key, "", printEnv)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func LoadConfig(printEnv bool) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{
		Port:              getEnv("PORT", "5000", printEnv),
		DataDir:           getEnv("DATA_DIR", "./data", printEnv),
		RapidAPIKey:       getEnvOrPanic("RAPIDAPI_KEY", printEnv),
		RapidAPIHost:      getEnv("RAPIDAPI_HOST", "twitter154.p.rapidapi.com", printEnv),
		SearchBaseURL:     getEnv("SEARCH_BASE_URL", "https://twitter154.p.rapidapi.com", printEnv),
		MaxPages:          getEnvInt("SEARCH_MAX_PAGES", 5, printEnv),
		PageDelay:         getEnvDuration("SEARCH_PAGE_DELAY", time.Second, printEnv),
		RequestTimeout:    getEnvDuration("SEARCH_REQUEST_TIMEOUT", 30*time.Second, printEnv),
		CompletionsAPIURL: getEnv("COMPLETIONS_API_URL", "https://api.openai.com/v1", printEnv),
		CompletionsAPIKey: getEnv("COMPLETIONS_API_KEY", "", printEnv),
		CompletionsModel:  getEnv("COMPLETIONS_MODEL", "gpt-4.1-mini", printEnv),
	}

	conf.TrendsURL = getEnv("TRENDS_URL", conf.SearchBaseURL+"/trends", printEnv)
	conf.HistoryDBPath = getEnv("HISTORY_DB_PATH", filepath.Join(conf.DataDir, "history.db"), printEnv)

	return conf, nil
}
