// Package repository keeps the ranking of explored schedule branches.
package repository

import (
	"context"

	"github.com/okian/staffing/internal/domain/model"
)

// Entry represents a board row.
type Entry struct {
	Rank    int
	Outcome model.BranchOutcome
}

// Store provides read/write access to the branch ranking.
type Store interface {
	// Report records a finished branch, keeping the higher score when the
	// branch reports twice. Returns true if the branch now leads the board.
	Report(ctx context.Context, o model.BranchOutcome) (bool, error)

	// Best returns the leading branch, or ErrNotFound on an empty board.
	Best(ctx context.Context) (Entry, error)

	// Rank returns the current rank of a branch.
	// Returns ErrNotFound if the branch is unknown.
	Rank(ctx context.Context, branch int) (Entry, error)

	// TopN returns the top-N entries ordered by score desc, branch id asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of branches on the board.
	Count(ctx context.Context) int
}
