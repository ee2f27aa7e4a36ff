// Package feasibility provides the cheap admissibility check run before the
// role allocator. It never searches; a Feasible verdict is necessary but not
// sufficient for the allocator to find an assignment.
package feasibility

import (
	"github.com/okian/staffing/internal/domain/model"
)

// View is the read-only slice of simulation state the filter needs.
type View interface {
	At(skill string, level int) []int
	Available(id int) bool
	MaxLevel(skill string) int
	NumContributors() int
}

// Verdict is the outcome of Check.
type Verdict int

const (
	// Feasible means both necessary conditions hold today.
	Feasible Verdict = iota
	// NotToday means the project cannot be staffed with today's availability.
	NotToday
	// Never means the project can never be staffed.
	Never
)

func (v Verdict) String() string {
	switch v {
	case Feasible:
		return "feasible"
	case NotToday:
		return "not_today"
	case Never:
		return "never"
	default:
		return "unknown"
	}
}

// Check classifies p against the current view.
//
// Never is only returned when proven: a role needs a level above the highest
// level anyone holds for that skill (the per-skill maximum cannot grow, since
// promotion requires a mentor already at the target level), or the project
// has more roles than there are contributors.
func Check(v View, p model.Project) Verdict {
	if len(p.Roles) > v.NumContributors() {
		return Never
	}
	for _, r := range p.Roles {
		if v.MaxLevel(r.Skill) < r.Level {
			return Never
		}
	}

	// Every role has someone available at or above the required level.
	for _, r := range p.Roles {
		if !anyAvailable(v, r.Skill, r.Level, nil) {
			return NotToday
		}
	}

	// Greedy distinct matching at the mentoring floor.
	claimed := make(map[int]struct{}, len(p.Roles))
	for _, r := range p.Roles {
		floor := r.Level - 1
		if floor < model.MinLevel {
			floor = model.MinLevel
		}
		id, ok := firstAvailable(v, r.Skill, floor, claimed)
		if !ok {
			return NotToday
		}
		claimed[id] = struct{}{}
	}
	return Feasible
}

// CanBeDone reports whether p passes both necessary conditions today.
func CanBeDone(v View, p model.Project) bool {
	return Check(v, p) == Feasible
}

func anyAvailable(v View, skill string, from int, claimed map[int]struct{}) bool {
	_, ok := firstAvailable(v, skill, from, claimed)
	return ok
}

func firstAvailable(v View, skill string, from int, claimed map[int]struct{}) (int, bool) {
	for level := from; level <= model.MaxLevel; level++ {
		for _, id := range v.At(skill, level) {
			if !v.Available(id) {
				continue
			}
			if _, taken := claimed[id]; taken {
				continue
			}
			return id, true
		}
	}
	return 0, false
}
