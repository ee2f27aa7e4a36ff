package testinstances

import (
	"context"
	"fmt"

	"github.com/okian/staffing/pkg/logger"
)

// verifyResults counts valid plans and reports the first failure.
func verifyResults(ctx context.Context, results []Result, stats *Stats) error {
	var first *Result
	for i := range results {
		r := &results[i]
		if err := verifyResult(r); err != nil {
			stats.PlansInvalid++
			logger.Get().Error(ctx, "plan failed verification",
				logger.Int("index", r.Index),
				logger.Int64("seed", r.Seed),
				logger.Error(err))
			if first == nil {
				r.Err = err
				first = r
			}
			continue
		}
		stats.PlansValid++
		stats.TotalScore += r.Score
	}
	if first != nil {
		return fmt.Errorf("%w: %d of %d plans, first at seed %d: %w",
			ErrVerificationFailed, stats.PlansInvalid, len(results), first.Seed, first.Err)
	}
	return nil
}

func verifyResult(r *Result) error {
	if r.Err != nil {
		return r.Err
	}
	// The validator starts each project as early as its team allows, so it
	// can only score a plan at or above what the planner committed.
	if r.Verified < r.Score {
		return fmt.Errorf("validator score %d below planner score %d", r.Verified, r.Score)
	}
	return nil
}
