// Package service runs planning requests and exposes their progress to the
// HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/staffing/internal/adapters/mq/queue"
	"github.com/okian/staffing/internal/domain/allocator"
	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/domain/simulation"
	"github.com/okian/staffing/internal/domain/types"
	"github.com/okian/staffing/pkg/logger"
	"github.com/okian/staffing/pkg/metrics"
)

const defaultQueueSize = 1024

// Service plans instances, one at a time.
type Service struct {
	mu sync.RWMutex

	// Configuration
	budget          time.Duration
	attempts        int
	allocWorkers    int
	seed            int64
	settle          time.Duration
	topK            int
	branches        int
	explorerWorkers int
	queueSize       int

	// Progress of the current or last run
	running      bool
	runID        string
	runs         int
	inst         *model.Instance
	current      *Plan
	finished     bool
	branchCount  int
	branchesDone int
	queue        queue.Queue
	lastDuration time.Duration

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		budget:          allocator.DefaultBudget,
		attempts:        allocator.DefaultAttempts,
		allocWorkers:    runtime.NumCPU(),
		seed:            allocator.DefaultSeed,
		settle:          allocator.DefaultSettleWindow,
		topK:            simulation.DefaultTopK,
		explorerWorkers: runtime.NumCPU(),
		queueSize:       defaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

func (s *Service) newAllocator(seed int64, workers int) *allocator.Allocator {
	return allocator.New(
		allocator.WithBudget(s.budget),
		allocator.WithAttempts(s.attempts),
		allocator.WithWorkers(workers),
		allocator.WithSeed(seed),
		allocator.WithSettleWindow(s.settle),
	)
}

// Plan schedules in. With more than one branch configured the explorer
// plays out several openings and keeps the best; otherwise a single greedy
// run is made. When ctx is cancelled the best plan so far (possibly nil) is
// returned with the error.
func (s *Service) Plan(ctx context.Context, in *model.Instance) (*Plan, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrPlanRunning
	}
	runID := uuid.NewString()
	s.running = true
	s.runID = runID
	s.runs++
	s.inst = in
	s.current = &Plan{RunID: runID}
	s.finished = false
	s.branchCount = 1
	s.branchesDone = 0
	s.mu.Unlock()

	metrics.UpdateInstanceSize(len(in.Contributors), len(in.Projects))
	s.logger.Info(ctx, "plan started",
		logger.String("runId", runID),
		logger.Int("contributors", len(in.Contributors)),
		logger.Int("projects", len(in.Projects)),
		logger.Int("branches", max(1, s.branches)),
	)

	start := time.Now()
	var (
		plan *Plan
		err  error
	)
	if s.branches > 1 {
		plan, err = s.explore(ctx, runID, in)
	} else {
		plan, err = s.single(ctx, runID, in)
	}
	elapsed := time.Since(start)

	status := "completed"
	if err != nil {
		status = "interrupted"
	}
	metrics.RecordRun(status, float64(elapsed.Milliseconds()))

	s.mu.Lock()
	s.running = false
	s.lastDuration = elapsed
	s.queue = nil
	if plan != nil {
		s.current = plan
	}
	s.finished = err == nil
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn(ctx, "plan interrupted", logger.String("runId", runID), logger.Error(err))
		return plan, err
	}
	s.logger.Info(ctx, "plan finished",
		logger.String("runId", runID),
		logger.Int("branch", plan.Branch),
		logger.Int("score", plan.Score),
		logger.Int("allocations", len(plan.Allocations)),
		logger.Duration("elapsed", elapsed),
	)
	return plan, nil
}

func (s *Service) single(ctx context.Context, runID string, in *model.Instance) (*Plan, error) {
	d := simulation.NewDriver(
		simulation.NewState(in),
		s.newAllocator(s.seed, s.allocWorkers),
		simulation.WithTopK(s.topK),
		simulation.WithObserver(&progress{svc: s}),
	)
	res, err := d.Run(ctx)
	plan := newPlan(runID, in, model.BranchOutcome{
		Opening:        -1,
		Score:          res.Score,
		LearningPoints: res.LearningPoints,
		Day:            res.Day,
		Allocations:    res.Allocations,
	})
	return plan, err
}

// Stats reports the progress of the current or last run.
func (s *Service) Stats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := types.Stats{
		RunID:          s.runID,
		Running:        s.running,
		Runs:           s.runs,
		Branches:       s.branchCount,
		BranchesDone:   s.branchesDone,
		LastDurationMs: s.lastDuration.Milliseconds(),
	}
	if s.current != nil {
		st.Day = s.current.Day
		st.Score = s.current.Score
		st.Committed = len(s.current.Allocations)
	}
	if s.queue != nil {
		st.QueueLength = s.queue.Len(ctx)
	}
	return st
}

// CurrentPlan returns the best plan known so far and whether one exists.
func (s *Service) CurrentPlan() (types.PlanResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return types.PlanResponse{}, false
	}
	return s.current.Response(s.finished), true
}

// progress mirrors a single driver run into the service.
type progress struct {
	svc *Service
}

func (p *progress) OnCommit(_ context.Context, a model.Allocation) {
	p.svc.mu.Lock()
	defer p.svc.mu.Unlock()
	cur := p.svc.current
	cur.Allocations = append(cur.Allocations, p.svc.inst.Named(a))
	cur.Score += a.Score
	cur.LearningPoints += a.LearningPoints
	cur.Day = a.Day
}

func (p *progress) OnAdvance(_ context.Context, day int) {
	p.svc.mu.Lock()
	defer p.svc.mu.Unlock()
	p.svc.current.Day = day
}
