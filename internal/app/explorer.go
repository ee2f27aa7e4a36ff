package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/staffing/internal/adapters/mq/queue"
	"github.com/okian/staffing/internal/adapters/mq/worker"
	"github.com/okian/staffing/internal/adapters/repository"
	"github.com/okian/staffing/internal/domain/dedupe"
	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/domain/scoring"
	"github.com/okian/staffing/internal/domain/simulation"
	"github.com/okian/staffing/pkg/logger"
)

const enqueueRetry = time.Millisecond

// branchRunner plays out one branch on a private copy of the day-0 state.
type branchRunner struct {
	svc     *Service
	base    *simulation.State
	workers int
	logger  logger.Logger
}

func (r *branchRunner) RunBranch(ctx context.Context, job model.BranchJob) (model.BranchOutcome, error) {
	d := simulation.NewDriver(
		r.base.Clone(),
		r.svc.newAllocator(job.Seed, r.workers),
		simulation.WithTopK(r.svc.topK),
		simulation.WithOpening(job.Opening),
		simulation.WithLogger(r.logger),
	)
	res, err := d.Run(ctx)
	if err != nil {
		return model.BranchOutcome{}, err
	}
	return model.BranchOutcome{
		Branch:         job.ID,
		Opening:        job.Opening,
		Score:          res.Score,
		LearningPoints: res.LearningPoints,
		Day:            res.Day,
		Allocations:    res.Allocations,
	}, nil
}

// boardReporter records finished branches and publishes a new leader to
// the service as soon as it takes the lead.
type boardReporter struct {
	board repository.Store
	svc   *Service
	runID string
	in    *model.Instance
}

func (b *boardReporter) Report(ctx context.Context, o model.BranchOutcome) (bool, error) {
	leads, err := b.board.Report(ctx, o)
	if err != nil {
		return false, err
	}
	b.svc.mu.Lock()
	b.svc.branchesDone++
	if leads {
		b.svc.current = newPlan(b.runID, b.in, o)
	}
	b.svc.mu.Unlock()
	return leads, nil
}

// branchJobs builds the plain greedy branch plus one branch per distinct
// opening among the best ranked day-0 projects. The greedy branch already
// opens with the top ranked project, so that opening is not repeated.
func (s *Service) branchJobs(ctx context.Context, base *simulation.State) []model.BranchJob {
	ranked := simulation.Rank(base, scoring.New(), s.branches)
	openings := dedupe.NewInMemoryDeduper()
	if len(ranked) > 0 {
		openings.SeenAndRecord(ctx, strconv.Itoa(ranked[0]))
	}

	jobs := []model.BranchJob{{ID: 0, Opening: -1, Seed: s.seed}}
	for _, p := range ranked {
		if openings.SeenAndRecord(ctx, strconv.Itoa(p)) {
			continue
		}
		id := len(jobs)
		jobs = append(jobs, model.BranchJob{ID: id, Opening: p, Seed: s.seed + int64(id*s.attempts)})
	}
	return jobs
}

func (s *Service) explore(ctx context.Context, runID string, in *model.Instance) (*Plan, error) {
	base := simulation.NewState(in)
	jobs := s.branchJobs(ctx, base)

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	board := repository.NewTreapStore()
	workers := min(s.explorerWorkers, len(jobs))
	runner := &branchRunner{
		svc:     s,
		base:    base,
		workers: max(1, s.allocWorkers/workers),
		logger:  s.logger.Named("branch"),
	}
	pool := worker.NewPool(workers, q, runner, &boardReporter{board: board, svc: s, runID: runID, in: in})

	s.mu.Lock()
	s.queue = q
	s.branchCount = len(jobs)
	s.mu.Unlock()

	s.logger.Debug(ctx, "exploring branches", logger.Int("branches", len(jobs)), logger.Int("workers", workers))
	pool.Start(ctx)
	for _, j := range jobs {
		if err := enqueue(ctx, q, j); err != nil {
			_ = pool.Shutdown(ctx)
			return nil, fmt.Errorf("enqueue branch %d: %w", j.ID, err)
		}
	}
	_ = q.Close()

	waitErr := pool.Wait(ctx)
	best, err := board.Best(ctx)
	if err != nil {
		if waitErr != nil {
			return nil, waitErr
		}
		return nil, fmt.Errorf("no branch finished: %w", err)
	}
	return newPlan(runID, in, best.Outcome), waitErr
}

// enqueue retries while the queue is full and ctx is alive.
func enqueue(ctx context.Context, q queue.Queue, j queue.Job) error {
	for !q.Enqueue(ctx, j) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if q.IsClosed() {
			return ErrQueueFull
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(enqueueRetry):
		}
	}
	return nil
}
