// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Feed settings
	FeedURL        string
	SourcesPath    string // YAML file with aggregator hosts + feed overrides
	UserAgent      string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxArticles    int

	// Enrichment / scraping settings
	EnrichTopN        int
	ScrapeConcurrency int
	EnrichCacheTTL    time.Duration

	// Gemini settings
	GeminiAPIKey     string
	GeminiModel      string
	GeminiMaxRetries int
	GeminiBackoff    time.Duration
	BatchSize        int
	MaxModelRequests int // per-run budget, 0 = unlimited

	// Storage settings
	OutputPath    string
	SeenCachePath string
	SeenTTLHours  int

	// Serve settings
	ListenAddr      string
	StaticDir       string
	RefreshInterval time.Duration

	Debug bool
}

func Load() (*Config, error) {
	// .env values are optional; real env vars win.
	_ = godotenv.Load()

	cfg := &Config{
		FeedURL:           "https://www.techmeme.com/feed.xml",
		SourcesPath:       "configs/sources.yaml",
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) TechNewsBot/0.2 (+contact@example.com)",
		RequestTimeout:    12 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        500 * time.Millisecond,
		MaxArticles:       20,
		EnrichTopN:        5,
		ScrapeConcurrency: 4,
		EnrichCacheTTL:    30 * time.Minute,
		GeminiModel:       "gemini-2.5-flash",
		GeminiMaxRetries:  3,
		GeminiBackoff:     1500 * time.Millisecond,
		BatchSize:         6,
		MaxModelRequests:  0,
		OutputPath:        "data/outputs/summaries.json",
		SeenCachePath:     "data/outputs/seen_articles.json",
		SeenTTLHours:      72,
		ListenAddr:        ":8000",
		StaticDir:         "web",
		RefreshInterval:   0,
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.FeedURL = getEnvOrDefault("FEED_URL", cfg.FeedURL)
	cfg.SourcesPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesPath)
	cfg.UserAgent = getEnvOrDefault("CRAWLER_UA", cfg.UserAgent)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.OutputPath = getEnvOrDefault("SUMMARY_OUTPUT_PATH", cfg.OutputPath)
	cfg.SeenCachePath = getEnvOrDefault("SEEN_CACHE_PATH", cfg.SeenCachePath)
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.StaticDir = getEnvOrDefault("STATIC_DIR", cfg.StaticDir)

	cfg.RetryAttempts = getEnvIntOrDefault("FEED_RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.MaxArticles = getEnvIntOrDefault("MAX_ARTICLES", cfg.MaxArticles)
	cfg.EnrichTopN = getEnvIntOrDefault("ENRICH_TOP_N", cfg.EnrichTopN)
	cfg.ScrapeConcurrency = getEnvIntOrDefault("SCRAPE_CONCURRENCY", cfg.ScrapeConcurrency)
	cfg.GeminiMaxRetries = getEnvIntOrDefault("GEMINI_MAX_RETRIES", cfg.GeminiMaxRetries)
	cfg.BatchSize = getEnvIntOrDefault("GEMINI_BATCH_SIZE", cfg.BatchSize)
	cfg.MaxModelRequests = getEnvIntOrDefault("MAX_MODEL_REQUESTS", cfg.MaxModelRequests)
	cfg.SeenTTLHours = getEnvIntOrDefault("SEEN_TTL_HOURS", cfg.SeenTTLHours)

	if v := os.Getenv("FEED_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("REFRESH_INTERVAL_MINUTES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RefreshInterval = time.Duration(val) * time.Minute
		}
	}

	if os.Getenv("DEBUG") == "true" {
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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate fails fast on configuration that would only blow up mid-run.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" || c.GeminiAPIKey == "your_gemini_api_key_here" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("GEMINI_BATCH_SIZE must be a positive integer, got %d", c.BatchSize)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("FEED_RETRY_ATTEMPTS must be at least 1, got %d", c.RetryAttempts)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("SUMMARY_OUTPUT_PATH must not be empty")
	}
	return nil
}
