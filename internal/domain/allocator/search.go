package allocator

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/okian/staffing/internal/domain/model"
)

type outcome int

const (
	outcomeFound outcome = iota
	outcomeExhausted
	outcomeTimeout
	outcomeStopped
)

func (o outcome) String() string {
	switch o {
	case outcomeFound:
		return "found"
	case outcomeExhausted:
		return "exhausted"
	case outcomeTimeout:
		return "timeout"
	default:
		return "stopped"
	}
}

// search is the private state of one randomized backtracking attempt. It
// only reads the View; used/assign are restored on every return path that
// does not end in a solution.
type search struct {
	v             View
	roles         []model.Role
	perm          []int
	assign        []int
	used          []bool
	skipMentoring bool
	deadline      time.Time
	stop          *atomic.Bool

	points  int
	aborted outcome
	halted  bool
}

func newSearch(v View, p model.Project, seed int64, skipMentoring bool, deadline time.Time, stop *atomic.Bool) *search {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // search diversification, not security
	perm := rng.Perm(len(p.Roles))
	roles := make([]model.Role, len(perm))
	for i, orig := range perm {
		roles[i] = p.Roles[orig]
	}
	assign := make([]int, len(roles))
	for i := range assign {
		assign[i] = -1
	}
	return &search{
		v:             v,
		roles:         roles,
		perm:          perm,
		assign:        assign,
		used:          make([]bool, v.NumContributors()),
		skipMentoring: skipMentoring,
		deadline:      deadline,
		stop:          stop,
	}
}

// expired is polled at recursion entry and per candidate.
func (s *search) expired() bool {
	if s.halted {
		return true
	}
	if s.stop.Load() {
		s.halted, s.aborted = true, outcomeStopped
		return true
	}
	if !time.Now().Before(s.deadline) {
		s.halted, s.aborted = true, outcomeTimeout
		return true
	}
	return false
}

func (s *search) floor(r model.Role) int {
	if s.skipMentoring || r.Level <= model.MinLevel {
		return r.Level
	}
	return r.Level - 1
}

func (s *search) run(i int) bool {
	if s.expired() {
		return false
	}
	if i == len(s.roles) {
		return s.accept()
	}
	r := s.roles[i]
	for level := s.floor(r); level <= model.MaxLevel; level++ {
		if level < r.Level && !s.mentorPlausible(i, r) {
			continue
		}
		for _, id := range s.v.At(r.Skill, level) {
			if s.expired() {
				return false
			}
			if s.used[id] || !s.v.Available(id) {
				continue
			}
			s.used[id] = true
			s.assign[i] = id
			if s.run(i + 1) {
				return true
			}
			s.used[id] = false
			s.assign[i] = -1
		}
	}
	return false
}

// mentorPlausible reports whether someone could mentor role i at r.Level:
// an already assigned contributor, or an available unused contributor who
// could fill one of the remaining roles.
func (s *search) mentorPlausible(i int, r model.Role) bool {
	for j := 0; j < i; j++ {
		if s.v.Level(s.assign[j], r.Skill) >= r.Level {
			return true
		}
	}
	for k := i + 1; k < len(s.roles); k++ {
		rk := s.roles[k]
		for level := s.floor(rk); level <= model.MaxLevel; level++ {
			for _, id := range s.v.At(rk.Skill, level) {
				if s.used[id] || !s.v.Available(id) {
					continue
				}
				if s.v.Level(id, r.Skill) >= r.Level {
					return true
				}
			}
		}
	}
	return false
}

// accept validates mentoring on a complete assignment and counts learning points.
func (s *search) accept() bool {
	points := 0
	for i, r := range s.roles {
		if s.v.Level(s.assign[i], r.Skill) >= r.Level {
			continue
		}
		mentored := false
		for j := range s.roles {
			if j != i && s.v.Level(s.assign[j], r.Skill) >= r.Level {
				mentored = true
				break
			}
		}
		if !mentored {
			return false
		}
		points++
	}
	s.points = points
	return true
}

// assignment returns the solution in original role order.
func (s *search) assignment() []int {
	out := make([]int, len(s.assign))
	for i, id := range s.assign {
		out[s.perm[i]] = id
	}
	return out
}

func (s *search) execute() outcome {
	if s.run(0) {
		return outcomeFound
	}
	if s.halted {
		return s.aborted
	}
	return outcomeExhausted
}
