// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Skill level bounds.
const (
	MinLevel   = 0
	MaxLevel   = 20
	LevelCount = MaxLevel + 1
)

// ErrInvalidInstance is returned by Instance.Validate.
var ErrInvalidInstance = errors.New("invalid instance")

// Role is one (skill, required level) slot of a project.
type Role struct {
	Skill string
	Level int
}

// Contributor is a person with leveled skills. Unlisted skills are level 0.
type Contributor struct {
	Name   string
	Skills map[string]int
}

// Level returns the contributor's level for skill (0 when unlisted).
func (c Contributor) Level(skill string) int {
	return c.Skills[skill]
}

// Clone returns a deep copy of the contributor.
func (c Contributor) Clone() Contributor {
	skills := make(map[string]int, len(c.Skills))
	for s, l := range c.Skills {
		skills[s] = l
	}
	return Contributor{Name: c.Name, Skills: skills}
}

// Project is a time-bounded piece of work with a fixed roster of roles.
type Project struct {
	Name       string
	Duration   int
	Score      int
	BestBefore int
	Roles      []Role
}

// Instance is a parsed problem: contributors and projects in input order.
type Instance struct {
	Contributors []Contributor
	Projects     []Project
}

// Skills returns the sorted union of skills held by contributors or required by roles.
func (in *Instance) Skills() []string {
	seen := make(map[string]struct{})
	for _, c := range in.Contributors {
		for s := range c.Skills {
			seen[s] = struct{}{}
		}
	}
	for _, p := range in.Projects {
		for _, r := range p.Roles {
			seen[r.Skill] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Validate checks structural constraints shared by every input format.
func (in *Instance) Validate() error {
	names := make(map[string]struct{}, len(in.Contributors))
	for i, c := range in.Contributors {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: contributor %d has no name", ErrInvalidInstance, i)
		}
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("%w: duplicate contributor %q", ErrInvalidInstance, c.Name)
		}
		names[c.Name] = struct{}{}
		for s, l := range c.Skills {
			if l < MinLevel || l > MaxLevel {
				return fmt.Errorf("%w: contributor %q skill %q level %d out of range", ErrInvalidInstance, c.Name, s, l)
			}
		}
	}
	projects := make(map[string]struct{}, len(in.Projects))
	for i, p := range in.Projects {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: project %d has no name", ErrInvalidInstance, i)
		}
		if _, dup := projects[p.Name]; dup {
			return fmt.Errorf("%w: duplicate project %q", ErrInvalidInstance, p.Name)
		}
		projects[p.Name] = struct{}{}
		if p.Duration < 1 {
			return fmt.Errorf("%w: project %q duration %d", ErrInvalidInstance, p.Name, p.Duration)
		}
		if len(p.Roles) == 0 {
			return fmt.Errorf("%w: project %q has no roles", ErrInvalidInstance, p.Name)
		}
		for _, r := range p.Roles {
			if r.Level < MinLevel || r.Level > MaxLevel {
				return fmt.Errorf("%w: project %q role %q level %d out of range", ErrInvalidInstance, p.Name, r.Skill, r.Level)
			}
		}
	}
	return nil
}

// Allocation is a committed staffing of a project. Contributors are indices
// into Instance.Contributors in the project's original role order.
type Allocation struct {
	Project        int
	Contributors   []int
	Day            int
	LearningPoints int
	Score          int
}

// NamedAllocation is the externally visible form of an Allocation.
type NamedAllocation struct {
	Project      string
	Contributors []string
}

// Named resolves an allocation's indices to names.
func (in *Instance) Named(a Allocation) NamedAllocation {
	names := make([]string, len(a.Contributors))
	for i, id := range a.Contributors {
		names[i] = in.Contributors[id].Name
	}
	return NamedAllocation{Project: in.Projects[a.Project].Name, Contributors: names}
}
