// Package simulation runs the day-clock greedy scheduler: pick the best
// feasible project, staff it, commit, and advance the clock when nothing
// else can be staffed today.
package simulation

import (
	"context"
	"fmt"

	"github.com/okian/staffing/internal/domain/allocator"
	"github.com/okian/staffing/internal/domain/feasibility"
	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/domain/scoring"
	"github.com/okian/staffing/internal/domain/topk"
	"github.com/okian/staffing/pkg/logger"
	"github.com/okian/staffing/pkg/metrics"
)

// Default driver configuration constants.
const (
	DefaultTopK = 16
)

// Phase is a driver state.
type Phase int

const (
	Selecting Phase = iota
	Staffing
	Advancing
	Done
)

func (p Phase) String() string {
	switch p {
	case Selecting:
		return "selecting"
	case Staffing:
		return "staffing"
	case Advancing:
		return "advancing"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Allocator staffs a single project against a read-only view.
type Allocator interface {
	Find(ctx context.Context, v allocator.View, p model.Project) (allocator.Result, bool)
}

// Observer is notified of driver progress. Calls happen on the driver's
// goroutine.
type Observer interface {
	OnCommit(ctx context.Context, a model.Allocation)
	OnAdvance(ctx context.Context, day int)
}

type nopObserver struct{}

func (nopObserver) OnCommit(context.Context, model.Allocation) {}
func (nopObserver) OnAdvance(context.Context, int)             {}

// Result is the outcome of a finished (or interrupted) run.
type Result struct {
	Allocations    []model.Allocation
	Score          int
	LearningPoints int
	Day            int
	Steps          int
}

type candidate struct {
	project    int
	value      int
	bestBefore int
}

func betterCandidate(a, b candidate) bool {
	if a.value != b.value {
		return a.value > b.value
	}
	if a.bestBefore != b.bestBefore {
		return a.bestBefore < b.bestBefore
	}
	return a.project < b.project
}

// Driver advances one State to Done.
type Driver struct {
	state    *State
	alloc    Allocator
	scorer   *scoring.Scorer
	topK     int
	opening  int
	observer Observer
	logger   logger.Logger

	phase      Phase
	candidates []int
	// skipped holds projects the allocator failed on today.
	skipped map[int]struct{}
	steps   int
}

// NewDriver creates a driver over state using alloc for staffing.
func NewDriver(state *State, alloc Allocator, opts ...Option) *Driver {
	d := &Driver{
		state:    state,
		alloc:    alloc,
		scorer:   scoring.New(),
		topK:     DefaultTopK,
		opening:  -1,
		observer: nopObserver{},
		phase:    Selecting,
		skipped:  make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get().Named("driver")
	}
	return d
}

// Phase returns the current driver state.
func (d *Driver) Phase() Phase { return d.phase }

// State returns the underlying simulation state.
func (d *Driver) State() *State { return d.state }

// Run steps until Done. If ctx is cancelled first, the partial result is
// returned together with the context error.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	d.logger.Info(ctx, "simulation started",
		logger.Int("contributors", d.state.NumContributors()),
		logger.Int("projects", d.state.Pending()),
	)
	for d.phase != Done {
		if err := ctx.Err(); err != nil {
			d.logger.Warn(ctx, "simulation interrupted", logger.Int("day", d.state.Day()), logger.Error(err))
			return d.result(), fmt.Errorf("simulation interrupted: %w", err)
		}
		d.Step(ctx)
	}
	res := d.result()
	d.logger.Info(ctx, "simulation finished",
		logger.Int("score", res.Score),
		logger.Int("allocations", len(res.Allocations)),
		logger.Int("learningPoints", res.LearningPoints),
		logger.Int("day", res.Day),
	)
	return res, nil
}

// Step performs one state transition and returns the new phase.
func (d *Driver) Step(ctx context.Context) Phase {
	d.steps++
	switch d.phase {
	case Selecting:
		d.candidates = d.selectCandidates(ctx)
		if len(d.candidates) == 0 {
			d.phase = Advancing
		} else {
			d.phase = Staffing
		}
	case Staffing:
		d.staff(ctx)
		d.phase = Selecting
	case Advancing:
		if d.state.Advance() {
			clear(d.skipped)
			metrics.UpdateSimulationDay(d.state.Day())
			d.observer.OnAdvance(ctx, d.state.Day())
			d.logger.Debug(ctx, "day advanced", logger.Int("day", d.state.Day()), logger.Int("pending", d.state.Pending()))
			d.phase = Selecting
		} else {
			d.phase = Done
		}
	case Done:
	}
	return d.phase
}

func (d *Driver) result() Result {
	return Result{
		Allocations:    d.state.History(),
		Score:          d.state.Score(),
		LearningPoints: d.state.LearningPoints(),
		Day:            d.state.Day(),
		Steps:          d.steps,
	}
}

// selectCandidates ranks today's feasible projects, marking proven
// impossible ones done. A pending opening is offered alone first.
func (d *Driver) selectCandidates(ctx context.Context) []int {
	if p := d.opening; p >= 0 {
		d.opening = -1
		if !d.state.Done(p) && feasibility.Check(d.state, d.state.inst.Projects[p]) == feasibility.Feasible {
			return []int{p}
		}
	}

	out := rank(d.state, d.scorer, d.topK, func(p int, v feasibility.Verdict) bool {
		if _, skip := d.skipped[p]; skip {
			return false
		}
		metrics.RecordFeasibility(v.String())
		if v == feasibility.Never {
			d.state.MarkDone(p)
			metrics.RecordProjectSkipped("never")
			d.logger.Debug(ctx, "project can never be staffed", logger.String("project", d.state.inst.Projects[p].Name))
		}
		return true
	})
	metrics.UpdatePendingProjects(d.state.Pending())
	return out
}

// Rank returns up to k of today's feasible projects, best first, without
// changing s.
func Rank(s *State, scorer *scoring.Scorer, k int) []int {
	return rank(s, scorer, k, nil)
}

// rank orders feasible pending projects by heuristic value. visit, when
// set, sees every verdict and may exclude a project by returning false.
func rank(s *State, scorer *scoring.Scorer, k int, visit func(p int, v feasibility.Verdict) bool) []int {
	day := s.Day()
	best := topk.New(k, betterCandidate)
	for p, proj := range s.inst.Projects {
		if s.Done(p) {
			continue
		}
		verdict := feasibility.Check(s, proj)
		if visit != nil && !visit(p, verdict) {
			continue
		}
		if verdict != feasibility.Feasible {
			continue
		}
		best.Push(candidate{project: p, value: scorer.Heuristic(day, proj), bestBefore: proj.BestBefore})
	}

	ranked := best.Sorted()
	out := make([]int, len(ranked))
	for i, c := range ranked {
		out[i] = c.project
	}
	return out
}

// staff tries candidates in rank order and stops at the first one that is
// committed or dropped as worthless. Failures are skipped for the day.
func (d *Driver) staff(ctx context.Context) {
	day := d.state.Day()
	for _, p := range d.candidates {
		if ctx.Err() != nil {
			return
		}
		proj := d.state.inst.Projects[p]
		res, ok := d.alloc.Find(ctx, d.state, proj)
		if !ok {
			d.skipped[p] = struct{}{}
			metrics.RecordProjectSkipped("no_assignment")
			continue
		}
		if scoring.Actual(day, proj) == 0 && res.LearningPoints == 0 {
			d.state.MarkDone(p)
			metrics.RecordProjectSkipped("zero_value")
			d.logger.Debug(ctx, "project dropped without value", logger.String("project", proj.Name), logger.Int("day", day))
			return
		}
		a, err := d.state.Commit(p, res.Assignment)
		if err != nil {
			d.skipped[p] = struct{}{}
			metrics.RecordErrorByComponent("driver", "invalid_assignment")
			d.logger.Error(ctx, "allocator returned an invalid assignment", logger.String("project", proj.Name), logger.Error(err))
			continue
		}
		metrics.RecordProjectCommitted(a.Score, a.LearningPoints)
		d.observer.OnCommit(ctx, a)
		d.logger.Debug(ctx, "project committed",
			logger.String("project", proj.Name),
			logger.Int("day", day),
			logger.Int("score", a.Score),
			logger.Int("learningPoints", a.LearningPoints),
		)
		return
	}
}
