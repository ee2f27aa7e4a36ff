// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and STAFFER_ env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the optional HTTP listen address, e.g. ":9080".
	// Empty disables the HTTP server.
	Addr string `koanf:"addr"`

	// InputPath and OutputPath locate the instance and the plan.
	InputPath  string `koanf:"input_path"`
	OutputPath string `koanf:"output_path"`

	// InputFormat is auto, text or json.
	InputFormat string `koanf:"input_format"`

	// AllocatorBudgetMS bounds one staffing search.
	AllocatorBudgetMS int `koanf:"allocator_budget_ms"`

	// AllocatorAttempts is the number of randomized attempts per search.
	AllocatorAttempts int `koanf:"allocator_attempts"`

	// AllocatorWorkers bounds concurrently running attempts.
	AllocatorWorkers int `koanf:"allocator_workers"`

	// AllocatorSeed is the base seed; attempt i uses seed+i.
	AllocatorSeed int64 `koanf:"allocator_seed"`

	// AllocatorSettleMS is how long other attempts may run after the first success.
	AllocatorSettleMS int `koanf:"allocator_settle_ms"`

	// SelectionTopK is how many candidates the driver ranks per selection.
	SelectionTopK int `koanf:"selection_top_k"`

	// ExplorerBranches enables branch exploration when greater than one.
	ExplorerBranches int `koanf:"explorer_branches"`

	// ExplorerWorkers sets the branch worker pool size.
	ExplorerWorkers int `koanf:"explorer_workers"`

	// ExplorerQueueSize bounds the branch job queue.
	ExplorerQueueSize int `koanf:"explorer_queue_size"`

	// MetricsRefreshMS is how often runtime gauges are sampled.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              "",
		InputFormat:       "auto",
		AllocatorBudgetMS: 20_000,
		AllocatorAttempts: 10,
		AllocatorWorkers:  runtime.NumCPU(),
		AllocatorSeed:     1,
		AllocatorSettleMS: 25,
		SelectionTopK:     16,
		ExplorerBranches:  0,
		ExplorerWorkers:   runtime.NumCPU(),
		ExplorerQueueSize: 1024,
		MetricsRefreshMS:  10_000,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.InputFormat {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("%w: input_format %q", ErrInvalidConfig, c.InputFormat)
	}
	positive := []struct {
		key string
		val int
	}{
		{"allocator_budget_ms", c.AllocatorBudgetMS},
		{"allocator_attempts", c.AllocatorAttempts},
		{"allocator_workers", c.AllocatorWorkers},
		{"selection_top_k", c.SelectionTopK},
		{"explorer_workers", c.ExplorerWorkers},
		{"explorer_queue_size", c.ExplorerQueueSize},
		{"metrics_refresh_ms", c.MetricsRefreshMS},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.key, p.val)
		}
	}
	if c.AllocatorSettleMS < 0 {
		return fmt.Errorf("%w: allocator_settle_ms must not be negative", ErrInvalidConfig)
	}
	if c.ExplorerBranches < 0 {
		return fmt.Errorf("%w: explorer_branches must not be negative", ErrInvalidConfig)
	}
	return nil
}

// AllocatorBudget returns the search budget as a duration.
func (c *Config) AllocatorBudget() time.Duration {
	return time.Duration(c.AllocatorBudgetMS) * time.Millisecond
}

// AllocatorSettle returns the settle window as a duration.
func (c *Config) AllocatorSettle() time.Duration {
	return time.Duration(c.AllocatorSettleMS) * time.Millisecond
}

// MetricsRefresh returns the runtime gauge sampling interval.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}
