package simulation

import (
	"fmt"

	"github.com/okian/staffing/internal/domain/calendar"
	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/domain/scoring"
	"github.com/okian/staffing/internal/domain/skills"
)

// State is one simulated timeline: the clock, every contributor's current
// levels, the committed history and which projects are done. Contributor ids
// and project ids are positions in the instance.
//
// A State is not safe for concurrent mutation. Concurrent reads are safe
// while nothing commits or advances.
type State struct {
	inst    *model.Instance
	people  []model.Contributor
	index   *skills.Index
	cal     *calendar.Calendar
	done    []bool
	pending int
	score   int
	points  int
	history []model.Allocation
}

// NewState returns a day-0 state for inst. The instance's contributors are
// copied; inst itself is never mutated.
func NewState(inst *model.Instance) *State {
	people := make([]model.Contributor, len(inst.Contributors))
	for i, c := range inst.Contributors {
		people[i] = c.Clone()
	}
	return &State{
		inst:    inst,
		people:  people,
		index:   skills.FromContributors(people, inst.Skills()),
		cal:     calendar.New(len(people)),
		done:    make([]bool, len(inst.Projects)),
		pending: len(inst.Projects),
	}
}

// Instance returns the instance the state was built from.
func (s *State) Instance() *model.Instance { return s.inst }

// Day returns the current simulated day.
func (s *State) Day() int { return s.cal.Day() }

// Score returns the accumulated actual score.
func (s *State) Score() int { return s.score }

// LearningPoints returns the total number of mentored promotions.
func (s *State) LearningPoints() int { return s.points }

// Pending returns how many projects are not yet done.
func (s *State) Pending() int { return s.pending }

// History returns the committed allocations in commit order.
func (s *State) History() []model.Allocation {
	return append([]model.Allocation(nil), s.history...)
}

// Done reports whether project p is committed or ruled out.
func (s *State) Done(p int) bool { return s.done[p] }

// MarkDone removes p from further consideration.
func (s *State) MarkDone(p int) {
	if !s.done[p] {
		s.done[p] = true
		s.pending--
	}
}

// Contributor returns a copy of contributor id with current levels.
func (s *State) Contributor(id int) model.Contributor { return s.people[id].Clone() }

// FreeAt returns the day id becomes free.
func (s *State) FreeAt(id int) int { return s.cal.FreeAt(id) }

// At returns the ids holding skill at exactly level.
func (s *State) At(skill string, level int) []int { return s.index.At(skill, level) }

// MaxLevel returns the highest level anyone holds in skill, or -1.
func (s *State) MaxLevel(skill string) int { return s.index.MaxLevel(skill) }

// Level returns id's current level in skill.
func (s *State) Level(id int, skill string) int { return s.people[id].Level(skill) }

// Available reports whether id is free today.
func (s *State) Available(id int) bool { return s.cal.Available(id) }

// NumContributors returns the number of contributors.
func (s *State) NumContributors() int { return len(s.people) }

// Advance moves the clock to the next free-day event. It reports false
// when nobody is busy beyond today.
func (s *State) Advance() bool { return s.cal.Advance() }

// Commit staffs project p today with assignment (contributor ids in role
// order). Mentees are promoted to the required level in both the
// contributor record and the skill index, assignees are booked until
// day+duration, and the actual score is added.
func (s *State) Commit(p int, assignment []int) (model.Allocation, error) {
	if err := s.check(p, assignment); err != nil {
		return model.Allocation{}, err
	}
	proj := s.inst.Projects[p]
	day := s.Day()
	points := 0
	for i, r := range proj.Roles {
		id := assignment[i]
		if lvl := s.people[id].Level(r.Skill); lvl < r.Level {
			s.people[id].Skills[r.Skill] = r.Level
			s.index.Move(r.Skill, id, lvl, r.Level)
			points++
		}
	}
	for _, id := range assignment {
		s.cal.Book(id, day+proj.Duration)
	}
	a := model.Allocation{
		Project:        p,
		Contributors:   append([]int(nil), assignment...),
		Day:            day,
		LearningPoints: points,
		Score:          scoring.Actual(day, proj),
	}
	s.history = append(s.history, a)
	s.score += a.Score
	s.points += points
	s.MarkDone(p)
	return a, nil
}

func (s *State) check(p int, assignment []int) error {
	if p < 0 || p >= len(s.inst.Projects) {
		return fmt.Errorf("%w: unknown project %d", ErrInvalidAssignment, p)
	}
	if s.done[p] {
		return fmt.Errorf("%w: project %q already done", ErrInvalidAssignment, s.inst.Projects[p].Name)
	}
	roles := s.inst.Projects[p].Roles
	if len(assignment) != len(roles) {
		return fmt.Errorf("%w: %d contributors for %d roles", ErrInvalidAssignment, len(assignment), len(roles))
	}
	used := make(map[int]struct{}, len(assignment))
	for i, id := range assignment {
		if id < 0 || id >= len(s.people) {
			return fmt.Errorf("%w: unknown contributor %d", ErrInvalidAssignment, id)
		}
		if _, dup := used[id]; dup {
			return fmt.Errorf("%w: %q assigned twice", ErrInvalidAssignment, s.people[id].Name)
		}
		used[id] = struct{}{}
		if !s.cal.Available(id) {
			return fmt.Errorf("%w: %q busy until day %d", ErrInvalidAssignment, s.people[id].Name, s.cal.FreeAt(id))
		}
		r := roles[i]
		lvl := s.people[id].Level(r.Skill)
		if lvl >= r.Level {
			continue
		}
		if lvl < r.Level-1 {
			return fmt.Errorf("%w: %q has %s %d, role needs %d", ErrInvalidAssignment, s.people[id].Name, r.Skill, lvl, r.Level)
		}
		if !s.mentored(assignment, i, r) {
			return fmt.Errorf("%w: no mentor for %q in %s", ErrInvalidAssignment, s.people[id].Name, r.Skill)
		}
	}
	return nil
}

func (s *State) mentored(assignment []int, i int, r model.Role) bool {
	for j, id := range assignment {
		if j != i && s.people[id].Level(r.Skill) >= r.Level {
			return true
		}
	}
	return false
}

// Clone returns an independent deep copy for branch exploration.
func (s *State) Clone() *State {
	people := make([]model.Contributor, len(s.people))
	for i, c := range s.people {
		people[i] = c.Clone()
	}
	return &State{
		inst:    s.inst,
		people:  people,
		index:   s.index.Clone(),
		cal:     s.cal.Clone(),
		done:    append([]bool(nil), s.done...),
		pending: s.pending,
		score:   s.score,
		points:  s.points,
		history: append([]model.Allocation(nil), s.history...),
	}
}
