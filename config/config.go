// Package config loads runtime settings from the environment with safe
// defaults, following twelve-factor conventions.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the course chat service.
type Config struct {
	BindAddr        string
	ShutdownTimeout time.Duration

	AnthropicAPIKey string
	AnthropicModel  string
	MaxTokens       int
	Temperature     float64

	// EmbeddingProvider selects how text is embedded: "openai", "ollama" or
	// "mock" for offline development.
	EmbeddingProvider string
	OpenAIAPIKey      string
	EmbeddingModel    string
	OllamaBaseURL     string

	// DatabaseURL enables the Postgres session store when set; sessions stay
	// in memory otherwise.
	DatabaseURL string

	DocsDir string

	MaxResults           int
	HistoryWindow        int
	MaxToolRounds        int
	CourseMatchThreshold float64
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:             envOrDefault("APP_BIND_ADDR", ":8080"),
		ShutdownTimeout:      15 * time.Second,
		AnthropicAPIKey:      trimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		AnthropicModel:       envOrDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		MaxTokens:            800,
		Temperature:          0,
		EmbeddingProvider:    strings.ToLower(envOrDefault("EMBEDDING_PROVIDER", "openai")),
		OpenAIAPIKey:         trimSpace(os.Getenv("OPENAI_API_KEY")),
		EmbeddingModel:       trimSpace(os.Getenv("EMBEDDING_MODEL")),
		OllamaBaseURL:        envOrDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
		DatabaseURL:          trimSpace(os.Getenv("DATABASE_URL")),
		DocsDir:              envOrDefault("CHAT_DOCS_DIR", "docs"),
		MaxResults:           5,
		HistoryWindow:        2,
		MaxToolRounds:        1,
		CourseMatchThreshold: 0.55,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxTokens, err = intFromEnv("CHAT_MAX_TOKENS", cfg.MaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.Temperature, err = floatFromEnv("CHAT_TEMPERATURE", cfg.Temperature)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxResults, err = intFromEnv("CHAT_MAX_RESULTS", cfg.MaxResults)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryWindow, err = intFromEnv("CHAT_HISTORY_WINDOW", cfg.HistoryWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxToolRounds, err = intFromEnv("CHAT_MAX_TOOL_ROUNDS", cfg.MaxToolRounds)
	if err != nil {
		return Config{}, err
	}
	cfg.CourseMatchThreshold, err = floatFromEnv("CHAT_COURSE_MATCH_THRESHOLD", cfg.CourseMatchThreshold)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.EmbeddingProvider {
	case "openai", "ollama", "mock":
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be openai, ollama or mock, got %q", c.EmbeddingProvider)
	}
	if c.EmbeddingProvider == "openai" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("CHAT_MAX_TOKENS must be positive")
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("CHAT_MAX_RESULTS must be positive")
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("CHAT_HISTORY_WINDOW must be >= 0")
	}
	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("CHAT_MAX_TOOL_ROUNDS must be positive")
	}
	if c.CourseMatchThreshold < 0 || c.CourseMatchThreshold > 1 {
		return fmt.Errorf("CHAT_COURSE_MATCH_THRESHOLD must be within [0, 1]")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	v := trimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func trimSpace(v string) string {
	return strings.TrimSpace(v)
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := trimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}
