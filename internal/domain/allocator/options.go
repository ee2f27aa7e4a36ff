package allocator

import (
	"time"

	"github.com/okian/staffing/pkg/logger"
)

// Option applies a configuration option to the Allocator.
type Option func(*Allocator)

// WithBudget sets the wall-clock budget of one Find or Attempt call.
func WithBudget(d time.Duration) Option {
	return func(a *Allocator) {
		if d > 0 {
			a.budget = d
		}
	}
}

// WithAttempts sets how many independent attempts Find runs.
func WithAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.attempts = n
		}
	}
}

// WithWorkers bounds how many attempts run at once.
func WithWorkers(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithSeed sets the base seed; attempt i uses seed+i.
func WithSeed(seed int64) Option {
	return func(a *Allocator) {
		a.seed = seed
	}
}

// WithSettleWindow sets how long other attempts may keep running after the
// first success. Zero stops them immediately.
func WithSettleWindow(d time.Duration) Option {
	return func(a *Allocator) {
		if d >= 0 {
			a.settle = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.logger = l
		}
	}
}
