package search

import (
	"os"
	"strconv"
	"time"
)

// Config holds the tuning knobs for the search engine. These come from
// the configuration layer as plain numeric parameters.
type Config struct {
	// Concurrency caps simultaneously in-flight per-date searches.
	// Default: 3
	Concurrency int

	// BatchDelay throttles provider load between batches.
	// Default: 500ms
	BatchDelay time.Duration

	// ItemRetry is the per-date retry policy.
	ItemRetry ItemRetryConfig

	// OperationRetry is the whole-search retry policy.
	OperationRetry RetryConfig

	// Timeout bounds a whole search invocation. Zero disables the
	// deadline.
	// Default: 3 minutes
	Timeout time.Duration

	// ResultsPerQuery hints how many options each provider call should
	// return.
	// Default: 10
	ResultsPerQuery int

	// MaxTransfers limits transfers per journey (-1 for no limit).
	MaxTransfers int
}

// DefaultConfig returns the default search configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency:     3,
		BatchDelay:      500 * time.Millisecond,
		ItemRetry:       DefaultItemRetryConfig(),
		OperationRetry:  DefaultRetryConfig(),
		Timeout:         3 * time.Minute,
		ResultsPerQuery: 10,
		MaxTransfers:    -1,
	}
}

// ConfigFromEnv creates a Config from environment variables, falling back
// to defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v, err := strconv.Atoi(getEnvOrDefault("SEARCH_CONCURRENCY", "")); err == nil && v > 0 {
		cfg.Concurrency = v
	}
	if v, err := time.ParseDuration(getEnvOrDefault("SEARCH_BATCH_DELAY", "")); err == nil && v > 0 {
		cfg.BatchDelay = v
	}
	if v, err := strconv.Atoi(getEnvOrDefault("SEARCH_ITEM_ATTEMPTS", "")); err == nil && v > 0 {
		cfg.ItemRetry.MaxAttempts = v
	}
	if v, err := time.ParseDuration(getEnvOrDefault("SEARCH_ITEM_RETRY_DELAY", "")); err == nil && v > 0 {
		cfg.ItemRetry.Delay = v
	}
	if v, err := strconv.Atoi(getEnvOrDefault("SEARCH_OP_ATTEMPTS", "")); err == nil && v > 0 {
		cfg.OperationRetry.MaxAttempts = v
	}
	if v, err := time.ParseDuration(getEnvOrDefault("SEARCH_OP_BASE_DELAY", "")); err == nil && v > 0 {
		cfg.OperationRetry.BaseDelay = v
	}
	if v, err := time.ParseDuration(getEnvOrDefault("SEARCH_TIMEOUT", "")); err == nil && v > 0 {
		cfg.Timeout = v
	}
	if v, err := strconv.Atoi(getEnvOrDefault("SEARCH_RESULTS_PER_QUERY", "")); err == nil && v > 0 {
		cfg.ResultsPerQuery = v
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
