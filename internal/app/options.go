package service

import (
	"time"

	"github.com/okian/staffing/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAllocatorBudget sets the wall-clock budget of one allocation.
func WithAllocatorBudget(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.budget = d
		}
	}
}

// WithAllocatorAttempts sets how many search attempts each allocation runs.
func WithAllocatorAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithAllocatorWorkers bounds concurrent search attempts per run.
func WithAllocatorWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.allocWorkers = n
		}
	}
}

// WithSeed sets the base random seed.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithSettleWindow sets how long slower attempts may still finish after
// the first success.
func WithSettleWindow(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.settle = d
		}
	}
}

// WithTopK sets how many candidates the driver ranks per selection.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithBranches enables branch exploration when n > 1.
func WithBranches(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.branches = n
		}
	}
}

// WithExplorerWorkers sets how many branches run at once.
func WithExplorerWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.explorerWorkers = n
		}
	}
}

// WithQueueSize sets the capacity of the branch queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
