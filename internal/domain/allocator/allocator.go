// Package allocator assigns contributors to the roles of a single project
// using randomized, time-bounded backtracking with mentoring.
package allocator

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/pkg/logger"
	"github.com/okian/staffing/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Default allocator configuration.
const (
	DefaultBudget       = 20 * time.Second
	DefaultAttempts     = 10
	DefaultSeed         = 1
	DefaultSettleWindow = 25 * time.Millisecond
)

// View is the read-only state the allocator searches over. Implementations
// must be safe for concurrent reads while Find runs.
type View interface {
	// At returns the ids holding skill at exactly level, ascending.
	At(skill string, level int) []int
	// Level returns id's level in skill, 0 if unlisted.
	Level(id int, skill string) int
	Available(id int) bool
	NumContributors() int
}

// Result is a valid assignment for a project.
type Result struct {
	// Assignment holds one contributor id per role, in role order.
	Assignment     []int
	LearningPoints int
	// Attempt is the index of the attempt that produced the result.
	Attempt int
}

// Allocator runs independent search attempts and keeps the best result.
type Allocator struct {
	budget   time.Duration
	attempts int
	workers  int
	seed     int64
	settle   time.Duration
	logger   logger.Logger
}

// New constructs an Allocator.
func New(opts ...Option) *Allocator {
	a := &Allocator{
		budget:   DefaultBudget,
		attempts: DefaultAttempts,
		workers:  runtime.NumCPU(),
		seed:     DefaultSeed,
		settle:   DefaultSettleWindow,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("allocator")
	}
	return a
}

// Budget returns the per-call wall-clock budget.
func (a *Allocator) Budget() time.Duration { return a.budget }

// Attempt runs a single search attempt. Attempt i shuffles roles with seed+i
// and skips the mentoring level when i is odd.
func (a *Allocator) Attempt(ctx context.Context, v View, p model.Project, index int) (Result, bool) {
	if len(p.Roles) == 0 {
		return Result{}, false
	}
	var stop atomic.Bool
	stop.Store(ctx.Err() != nil)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			stop.Store(true)
		case <-done:
		}
	}()
	r, out := a.attempt(v, p, index, time.Now().Add(a.budget), &stop)
	return r, out == outcomeFound
}

func (a *Allocator) attempt(v View, p model.Project, index int, deadline time.Time, stop *atomic.Bool) (Result, outcome) {
	s := newSearch(v, p, a.seed+int64(index), index%2 == 1, deadline, stop)
	out := s.execute()
	metrics.RecordAllocatorAttempt(out.String())
	if out != outcomeFound {
		return Result{}, out
	}
	return Result{Assignment: s.assignment(), LearningPoints: s.points, Attempt: index}, out
}

// Find runs the configured attempts concurrently on a bounded pool. Each
// attempt stops at its first valid assignment. Once any attempt succeeds
// the others get the settle window to finish, then are told to stop. The
// winner has the most learning points, ties going to the lowest attempt
// index. Find reports false when no attempt found an assignment before the
// budget elapsed or ctx was cancelled.
func (a *Allocator) Find(ctx context.Context, v View, p model.Project) (Result, bool) {
	if len(p.Roles) == 0 {
		return Result{}, false
	}
	start := time.Now()
	deadline := start.Add(a.budget)

	var stop atomic.Bool
	stop.Store(ctx.Err() != nil)
	results := make(chan Result, a.attempts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	go func() {
		<-gctx.Done()
		stop.Store(true)
	}()
	go func() {
		for i := 0; i < a.attempts; i++ {
			index := i
			g.Go(func() error {
				if stop.Load() {
					return nil
				}
				if r, out := a.attempt(v, p, index, deadline, &stop); out == outcomeFound {
					results <- r
				}
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	var (
		best   Result
		found  bool
		settle <-chan time.Time
	)
collect:
	for {
		select {
		case r, ok := <-results:
			if !ok {
				break collect
			}
			if !found || better(r, best) {
				best, found = r, true
			}
			if settle == nil {
				if a.settle <= 0 {
					stop.Store(true)
				} else {
					settle = time.After(a.settle)
				}
			}
		case <-settle:
			stop.Store(true)
		}
	}

	elapsed := time.Since(start)
	label := "not_found"
	if found {
		label = "found"
	}
	metrics.RecordAllocation(label, float64(elapsed.Microseconds())/1000)
	a.logger.Debug(ctx, "allocation finished",
		logger.String("project", p.Name),
		logger.Bool("found", found),
		logger.Int("learningPoints", best.LearningPoints),
		logger.Int("attempt", best.Attempt),
		logger.Duration("elapsed", elapsed),
	)
	return best, found
}

func better(a, b Result) bool {
	if a.LearningPoints != b.LearningPoints {
		return a.LearningPoints > b.LearningPoints
	}
	return a.Attempt < b.Attempt
}
