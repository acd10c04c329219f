package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Gemini settings
	GeminiAPIKey     string
	GeminiModel      string
	MaxModelRequests int // maximum completion calls per run (0 = unlimited)

	// Search settings
	LocalesConfigPath string
	Locale            string // preset name from locales.yaml
	MaxArticles       int    // cap of candidate articles per search

	// Chunker settings
	ChunkMaxWords int

	// Network settings
	RequestTimeout time.Duration
	ModelTimeout   time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Pipeline settings
	ArticleConcurrency int // parallel per-article pipelines

	// Derived artifact cache
	ArtifactTTL time.Duration

	// Export settings
	ExportPath string

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		GeminiModel:        "gemini-1.5-flash",
		MaxModelRequests:   60,
		LocalesConfigPath:  "configs/locales.yaml",
		Locale:             "in",
		MaxArticles:        10,
		ChunkMaxWords:      300,
		RequestTimeout:     15 * time.Second,
		ModelTimeout:       60 * time.Second,
		RetryAttempts:      3,
		RetryDelay:         2 * time.Second,
		ArticleConcurrency: 4,
		ArtifactTTL:        2 * time.Hour,
		ExportPath:         "timeline.txt",
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	cfg.LocalesConfigPath = getEnvOrDefault("LOCALES_CONFIG_PATH", cfg.LocalesConfigPath)
	cfg.Locale = getEnvOrDefault("SEARCH_LOCALE", cfg.Locale)
	cfg.ExportPath = getEnvOrDefault("EXPORT_PATH", cfg.ExportPath)

	cfg.MaxModelRequests = getEnvIntOrDefault("MAX_MODEL_REQUESTS", cfg.MaxModelRequests)
	cfg.MaxArticles = getEnvIntOrDefault("MAX_ARTICLES", cfg.MaxArticles)
	cfg.ChunkMaxWords = getEnvIntOrDefault("CHUNK_MAX_WORDS", cfg.ChunkMaxWords)
	cfg.ArticleConcurrency = getEnvIntOrDefault("ARTICLE_CONCURRENCY", cfg.ArticleConcurrency)

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("MODEL_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ModelTimeout = time.Duration(val) * time.Second
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue >= 0 {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive")
	}
	if c.ChunkMaxWords <= 0 {
		return fmt.Errorf("CHUNK_MAX_WORDS must be positive")
	}
	if c.ArticleConcurrency <= 0 {
		return fmt.Errorf("ARTICLE_CONCURRENCY must be positive")
	}
	return nil
}
