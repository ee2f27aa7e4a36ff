package simulation

import (
	"github.com/okian/staffing/internal/domain/scoring"
	"github.com/okian/staffing/pkg/logger"
)

// Option applies a configuration option to the Driver.
type Option func(*Driver)

// WithTopK sets how many candidates are ranked per selection.
func WithTopK(k int) Option {
	return func(d *Driver) {
		if k > 0 {
			d.topK = k
		}
	}
}

// WithScorer sets the ranking heuristic.
func WithScorer(s *scoring.Scorer) Option {
	return func(d *Driver) {
		if s != nil {
			d.scorer = s
		}
	}
}

// WithOpening makes the first selection offer project p alone. If p cannot
// be staffed then, selection falls back to the ranking.
func WithOpening(p int) Option {
	return func(d *Driver) {
		d.opening = p
	}
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(d *Driver) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}
