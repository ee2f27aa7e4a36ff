package testinstances

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/staffing/internal/adapters/instance"
	service "github.com/okian/staffing/internal/app"
	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/validate"
	"github.com/okian/staffing/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run generates cfg.Instances instances, plans each one and checks every
// plan with the validator. It returns the run statistics together with
// ErrVerificationFailed when any plan did not check out.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("testinstances")

	log.Info(ctx, "starting staffing test",
		logger.Int("instances", cfg.Instances),
		logger.Int("contributors", cfg.Contributors),
		logger.Int("projects", cfg.Projects),
		logger.Int("workers", cfg.Workers),
		logger.Duration("budget", cfg.Budget),
		logger.Int("branches", cfg.Branches),
		logger.Any("verbose", cfg.Verbose))

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, directoryPermission); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	results := make([]Result, cfg.Instances)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Instances; i++ {
		index := i
		g.Go(func() error {
			r := runOne(gctx, cfg, index)
			mu.Lock()
			results[index] = r
			stats.InstancesGenerated++
			if r.Allocations >= 0 {
				stats.InstancesPlanned++
			}
			mu.Unlock()
			if cfg.Verbose {
				log.Info(gctx, "instance finished",
					logger.Int("index", r.Index),
					logger.Int64("seed", r.Seed),
					logger.Int("allocations", r.Allocations),
					logger.Int("score", r.Score),
					logger.Int("verified", r.Verified),
					logger.Any("error", r.Err))
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("staffing test interrupted: %w", err)
	}

	err := verifyResults(ctx, results, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, err
}

// runOne plans and validates the instance generated for index. Allocations
// is -1 when no plan was produced.
func runOne(ctx context.Context, cfg *Config, index int) Result {
	seed := cfg.Seed + int64(index)
	r := Result{Index: index, Seed: seed, Allocations: -1}
	in := Generate(cfg, seed)

	svc := service.New(
		service.WithAllocatorBudget(cfg.Budget),
		service.WithSeed(seed),
		service.WithBranches(cfg.Branches),
		service.WithLogger(logger.Get().Named("service")),
	)
	plan, err := svc.Plan(ctx, in)
	if plan == nil {
		r.Err = fmt.Errorf("plan: %w", err)
		return r
	}
	r.Allocations = len(plan.Allocations)
	r.Score = plan.Score

	if cfg.OutputDir != "" {
		if err := save(cfg, index, in, plan.Allocations); err != nil {
			logger.Get().Warn(ctx, "failed to save instance", logger.Int("index", index), logger.Error(err))
		}
	}

	report, err := validate.New(in).Validate(ctx, plan.Allocations)
	if err != nil {
		r.Err = err
		return r
	}
	r.Verified = report.Score
	return r
}

// save writes the instance and its plan into cfg.OutputDir.
func save(cfg *Config, index int, in *model.Instance, plan []model.NamedAllocation) error {
	ext := ".txt"
	if cfg.Compress {
		ext += ".zst"
	}
	base := filepath.Join(cfg.OutputDir, fmt.Sprintf("%03d", index))
	if err := writeFile(base+"_instance"+ext, func(w io.Writer) error { return instance.WriteInstance(w, in) }); err != nil {
		return err
	}
	return writeFile(base+"_plan"+ext, func(w io.Writer) error { return instance.WriteText(w, plan) })
}

func writeFile(path string, write func(io.Writer) error) error {
	w, err := instance.Create(path)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return w.Close()
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var instancesPerSecond float64
	if stats.Duration > 0 {
		instancesPerSecond = float64(stats.InstancesPlanned) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("instancesGenerated", stats.InstancesGenerated),
		logger.Int("instancesPlanned", stats.InstancesPlanned),
		logger.Int("plansValid", stats.PlansValid),
		logger.Int("plansInvalid", stats.PlansInvalid),
		logger.Int("totalScore", stats.TotalScore),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("instancesPerSecond", instancesPerSecond))
}
