// Package validate replays a plan against an instance and scores it the
// way the contest judge does.
package validate

import (
	"context"
	"fmt"

	"github.com/okian/staffing/internal/domain/dedupe"
	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/domain/scoring"
	"github.com/okian/staffing/pkg/logger"
)

// Report summarizes a valid plan.
type Report struct {
	Score         int
	SkillIncrease int
	Projects      int
	// LastDay is the latest finish day over all planned projects.
	LastDay int
}

// Validator checks plans against one instance.
type Validator struct {
	in       *model.Instance
	projects map[string]int
	people   map[string]int
	logger   logger.Logger
}

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// New indexes the instance's names for validation.
func New(in *model.Instance, opts ...Option) *Validator {
	v := &Validator{
		in:       in,
		projects: make(map[string]int, len(in.Projects)),
		people:   make(map[string]int, len(in.Contributors)),
	}
	for i, p := range in.Projects {
		v.projects[p.Name] = i
	}
	for i, c := range in.Contributors {
		v.people[c.Name] = i
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = logger.Get().Named("validate")
	}
	return v
}

// Validate replays plan in order. A project starts once every assignee is
// free and never before the previous project's start. Assignees are checked
// against their levels from before the project; mentees gain one level when
// it is accepted.
func (v *Validator) Validate(ctx context.Context, plan []model.NamedAllocation) (Report, error) {
	people := make([]model.Contributor, len(v.in.Contributors))
	for i, c := range v.in.Contributors {
		people[i] = c.Clone()
	}
	busy := make([]int, len(people))
	planned := dedupe.NewInMemoryDeduper()

	var rep Report
	day := 0
	for step, a := range plan {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		pi, ok := v.projects[a.Project]
		if !ok {
			return rep, reject(step, ErrUnknownProject, "%q", a.Project)
		}
		if planned.SeenAndRecord(ctx, a.Project) {
			return rep, reject(step, ErrDuplicateProject, "%q", a.Project)
		}
		p := v.in.Projects[pi]
		if len(a.Contributors) != len(p.Roles) {
			return rep, reject(step, ErrRoleMismatch, "%q has %d roles, got %d contributors", p.Name, len(p.Roles), len(a.Contributors))
		}

		ids := make([]int, len(a.Contributors))
		inProject := make(map[int]bool, len(ids))
		for i, name := range a.Contributors {
			id, ok := v.people[name]
			if !ok {
				return rep, reject(step, ErrUnknownContributor, "%q", name)
			}
			if inProject[id] {
				return rep, reject(step, ErrDoubleBooked, "%q in %q", name, p.Name)
			}
			inProject[id] = true
			ids[i] = id
			if busy[id] > day {
				day = busy[id]
			}
		}

		var mentees []int
		for i, r := range p.Roles {
			lvl := people[ids[i]].Level(r.Skill)
			if lvl < r.Level-1 {
				return rep, reject(step, ErrSkillTooLow, "%q has %s %d, role needs %d", a.Contributors[i], r.Skill, lvl, r.Level)
			}
			if lvl >= r.Level {
				continue
			}
			if !mentored(people, ids, i, r) {
				return rep, reject(step, ErrMissingMentor, "%q for %s %d in %q", a.Contributors[i], r.Skill, r.Level, p.Name)
			}
			mentees = append(mentees, i)
		}

		for _, i := range mentees {
			c := &people[ids[i]]
			c.Skills[p.Roles[i].Skill] = p.Roles[i].Level
			rep.SkillIncrease++
		}
		end := day + p.Duration
		for _, id := range ids {
			busy[id] = end
		}
		if end > rep.LastDay {
			rep.LastDay = end
		}
		rep.Score += scoring.Actual(day, p)
		rep.Projects++
	}

	v.logger.Debug(ctx, "plan validated",
		logger.Int("projects", rep.Projects),
		logger.Int("score", rep.Score),
		logger.Int("skillIncrease", rep.SkillIncrease),
		logger.Int("lastDay", rep.LastDay),
	)
	return rep, nil
}

func mentored(people []model.Contributor, ids []int, role int, r model.Role) bool {
	for j, id := range ids {
		if j != role && people[id].Level(r.Skill) >= r.Level {
			return true
		}
	}
	return false
}

func reject(step int, kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: allocation %d: %s", ErrInvalidPlan, kind, step, fmt.Sprintf(format, args...))
}
