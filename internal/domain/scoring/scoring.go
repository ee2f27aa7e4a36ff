// Package scoring computes project value: the lateness penalty, the score a
// staffed project actually earns, and the greedy ranking heuristic.
package scoring

import (
	"github.com/okian/staffing/internal/domain/model"
)

// Default heuristic configuration constants.
const (
	defaultRewardExponent = 2
	defaultWorkWeight     = 1
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithRewardExponent sets the power the raw score is raised to in the heuristic.
func WithRewardExponent(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.exponent = n
		}
	}
}

// WithWorkWeight sets the weight of duration×roles in the heuristic.
func WithWorkWeight(w int) Option {
	return func(s *Scorer) {
		if w >= 0 {
			s.workWeight = w
		}
	}
}

// Scorer ranks candidate projects for the driver.
type Scorer struct {
	exponent   int
	workWeight int
}

// New creates a Scorer with configuration options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		exponent:   defaultRewardExponent,
		workWeight: defaultWorkWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LatenessPenalty is max(0, day + duration − best_before).
func LatenessPenalty(day int, p model.Project) int {
	return max(0, day+p.Duration-p.BestBefore)
}

// Actual is the score p earns when staffed on day: max(0, score − penalty).
func Actual(day int, p model.Project) int {
	return max(0, p.Score-LatenessPenalty(day, p))
}

// Heuristic is max(0, score^k − w×duration×roles − penalty), k=2 and w=1 by default.
func (s *Scorer) Heuristic(day int, p model.Project) int {
	reward := 1
	for i := 0; i < s.exponent; i++ {
		reward *= p.Score
	}
	return max(0, reward-s.workWeight*p.Duration*len(p.Roles)-LatenessPenalty(day, p))
}
