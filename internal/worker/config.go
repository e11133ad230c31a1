// Package worker provides background job processing for FareScout.
package worker

import (
	"time"
)

// RunnerConfig holds configuration for the saved search runner job.
type RunnerConfig struct {
	// Concurrency is the number of saved searches executed at once.
	// Each search already fans out its own provider requests, so this
	// stays low. Default: 2
	Concurrency int

	// SearchTimeout bounds a single saved search execution.
	// Default: 5 minutes
	SearchTimeout time.Duration

	// MinInterval skips searches that ran more recently than this.
	// Default: 6 hours
	MinInterval time.Duration
}

// DefaultRunnerConfig returns the default runner configuration.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Concurrency:   2,
		SearchTimeout: 5 * time.Minute,
		MinInterval:   6 * time.Hour,
	}
}

func (c RunnerConfig) withDefaults() RunnerConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = 5 * time.Minute
	}
	if c.MinInterval <= 0 {
		c.MinInterval = 6 * time.Hour
	}
	return c
}
