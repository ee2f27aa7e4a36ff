package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then branch ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the board from
// best to worst. Subtree sizes give O(log n) rank queries.

type node struct {
	branch int
	score  int
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore, aID, bScore, bID int) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

// priority spreads branch ids over uint64 (splitmix64 finalizer) so the
// tree stays balanced whatever order branches finish in.
func priority(branch int) uint64 {
	z := uint64(branch) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, branch, score int) *node {
	if n == nil {
		return &node{branch: branch, score: score, prio: priority(branch), size: 1}
	}
	if less(score, branch, n.score, n.branch) {
		n.left = insert(n.left, branch, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, branch, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, branch, score int) *node {
	if n == nil {
		return nil
	}
	if score == n.score && branch == n.branch {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, branch, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, branch, score)
		}
	} else if less(score, branch, n.score, n.branch) {
		n.left = deleteNode(n.left, branch, score)
	} else {
		n.right = deleteNode(n.right, branch, score)
	}
	fix(n)
	return n
}

// position returns the 1-based in-order position of (branch, score).
func position(n *node, branch, score int) int {
	pos := 0
	for n != nil {
		switch {
		case score == n.score && branch == n.branch:
			return pos + nsize(n.left) + 1
		case less(score, branch, n.score, n.branch):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit branch ids in rank order.
func collectTopN(n *node, limit int, out *[]int) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.branch)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore is a mutex-guarded Store.
type TreapStore struct {
	mu       sync.RWMutex
	root     *node
	byBranch map[int]model.BranchOutcome
}

// NewTreapStore constructs an empty board.
func NewTreapStore() *TreapStore {
	metrics.UpdateBoardBranches(0)
	return &TreapStore{byBranch: make(map[int]model.BranchOutcome)}
}

// Report implements Store.Report with O(log n) expected time.
func (s *TreapStore) Report(_ context.Context, o model.BranchOutcome) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBoardUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	if old, ok := s.byBranch[o.Branch]; ok {
		if o.Score <= old.Score {
			s.mu.Unlock()
			return false, nil
		}
		s.root = deleteNode(s.root, old.Branch, old.Score)
	}
	s.byBranch[o.Branch] = o
	s.root = insert(s.root, o.Branch, o.Score)
	leads := position(s.root, o.Branch, o.Score) == 1
	count := len(s.byBranch)
	s.mu.Unlock()

	metrics.UpdateBoardBranches(count)
	return leads, nil
}

// Best returns the leading branch.
func (s *TreapStore) Best(ctx context.Context) (Entry, error) {
	top, err := s.TopN(ctx, 1)
	if err != nil {
		return Entry{}, err
	}
	if len(top) == 0 {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return top[0], nil
}

// Rank returns the current rank of a branch in O(log n).
func (s *TreapStore) Rank(_ context.Context, branch int) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byBranch[branch]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{Rank: position(s.root, o.Branch, o.Score), Outcome: o}, nil
}

// TopN returns the top N entries ordered by score desc.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, min(n, len(s.byBranch)))
	collectTopN(s.root, n, &ids)
	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = Entry{Rank: i + 1, Outcome: s.byBranch[id]}
	}
	return out, nil
}

// Count returns the number of branches on the board.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byBranch)
}
