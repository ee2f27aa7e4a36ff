package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/staffing/internal/adapters/mq/queue"
	worker "github.com/okian/staffing/internal/adapters/mq/worker"
	model "github.com/okian/staffing/internal/domain/model"
	logging "github.com/okian/staffing/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logging.Init()
}

type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 16)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

type mockRunner struct {
	fail  map[int]error
	delay time.Duration
}

func (mr *mockRunner) RunBranch(ctx context.Context, job model.BranchJob) (model.BranchOutcome, error) {
	if err := mr.fail[job.ID]; err != nil {
		return model.BranchOutcome{}, err
	}
	if mr.delay > 0 {
		select {
		case <-time.After(mr.delay):
		case <-ctx.Done():
			return model.BranchOutcome{}, ctx.Err()
		}
	}
	return model.BranchOutcome{Branch: job.ID, Opening: job.Opening, Score: job.ID * 10}, nil
}

type mockReporter struct {
	mu       sync.Mutex
	outcomes map[int]model.BranchOutcome
	err      error
}

func newMockReporter() *mockReporter {
	return &mockReporter{outcomes: make(map[int]model.BranchOutcome)}
}

func (mr *mockReporter) Report(_ context.Context, o model.BranchOutcome) (bool, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if mr.err != nil {
		return false, mr.err
	}
	mr.outcomes[o.Branch] = o
	return true, nil
}

func (mr *mockReporter) count() int {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	return len(mr.outcomes)
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker with a queue, runner and reporter", t, func() {
		q := newMockQueue()
		runner := &mockRunner{fail: map[int]error{}}
		reporter := newMockReporter()
		w := worker.NewInMemoryWorker(q, runner, reporter, worker.WithName("test-worker"))
		ctx := context.Background()

		convey.Convey("When jobs are queued and the queue is closed", func() {
			q.jobs <- queue.Job{ID: 1, Opening: 0}
			q.jobs <- queue.Job{ID: 2, Opening: 1}
			_ = q.Close()
			w.Run(ctx)

			convey.Convey("Then every outcome is reported", func() {
				convey.So(reporter.count(), convey.ShouldEqual, 2)
				convey.So(reporter.outcomes[2].Score, convey.ShouldEqual, 20)
				convey.So(reporter.outcomes[2].Opening, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a branch fails", func() {
			runner.fail[1] = errors.New("boom")
			q.jobs <- queue.Job{ID: 1}
			q.jobs <- queue.Job{ID: 2}
			_ = q.Close()
			w.Run(ctx)

			convey.Convey("Then the worker keeps going", func() {
				convey.So(reporter.count(), convey.ShouldEqual, 1)
				_, ok := reporter.outcomes[2]
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the reporter fails", func() {
			reporter.err = errors.New("board down")
			q.jobs <- queue.Job{ID: 1}
			_ = q.Close()
			w.Run(ctx)

			convey.Convey("Then nothing is recorded and the worker exits", func() {
				convey.So(reporter.count(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the worker is shut down while idle", func() {
			go w.Run(ctx)
			sctx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()

			convey.Convey("Then shutdown returns promptly and is repeatable", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over the in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(32))
		reporter := newMockReporter()
		pool := worker.NewPool(3, q, &mockRunner{fail: map[int]error{}, delay: time.Millisecond}, reporter)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		convey.So(pool.Size(), convey.ShouldEqual, 3)

		convey.Convey("When jobs are enqueued and the queue closed", func() {
			for i := 0; i < 20; i++ {
				convey.So(q.Enqueue(ctx, queue.Job{ID: i}), convey.ShouldBeTrue)
			}
			_ = q.Close()
			pool.Start(ctx)
			err := pool.Wait(ctx)

			convey.Convey("Then the pool drains every job", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(reporter.count(), convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When the pool is shut down before the queue closes", func() {
			pool.Start(ctx)
			q.Enqueue(ctx, queue.Job{ID: 1})
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
			err := pool.Wait(ctx)

			convey.Convey("Then Wait reports that it finished", func() {
				// Shutdown closes the queue, so a worker may still drain it.
				if err != nil {
					convey.So(errors.Is(err, worker.ErrStopped), convey.ShouldBeTrue)
				}
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cctx, ccancel := context.WithCancel(ctx)
			pool.Start(cctx)
			ccancel()
			err := pool.Wait(ctx)

			convey.Convey("Then Wait returns ErrStopped", func() {
				convey.So(errors.Is(err, worker.ErrStopped), convey.ShouldBeTrue)
			})
		})
	})
}
