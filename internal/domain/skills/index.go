// Package skills maintains the per-skill, per-level registry of contributors.
//
// Each known skill owns a fixed array of level buckets (index = level), each
// bucket a sorted slice of contributor ids. A contributor sits in exactly one
// bucket per skill.
package skills

import (
	"sort"

	"github.com/okian/staffing/internal/domain/model"
)

type levelSets [model.LevelCount][]int

// Index maps skill -> level -> contributor ids.
type Index struct {
	bySkill map[string]*levelSets
}

// New returns an empty index.
func New() *Index {
	return &Index{bySkill: make(map[string]*levelSets)}
}

// FromContributors builds an index over the given skills. Contributor ids are
// slice positions; a contributor without a skill is registered at level 0.
func FromContributors(contributors []model.Contributor, skills []string) *Index {
	x := New()
	for _, skill := range skills {
		for id, c := range contributors {
			x.Insert(skill, id, c.Level(skill))
		}
	}
	return x
}

func validLevel(level int) bool {
	return level >= model.MinLevel && level <= model.MaxLevel
}

func (x *Index) sets(skill string) *levelSets {
	ls, ok := x.bySkill[skill]
	if !ok {
		ls = &levelSets{}
		x.bySkill[skill] = ls
	}
	return ls
}

// Insert registers id at level for skill. It reports false for an
// out-of-range level or when id is already present at that level.
func (x *Index) Insert(skill string, id, level int) bool {
	if !validLevel(level) {
		return false
	}
	ls := x.sets(skill)
	bucket := ls[level]
	i := sort.SearchInts(bucket, id)
	if i < len(bucket) && bucket[i] == id {
		return false
	}
	bucket = append(bucket, 0)
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = id
	ls[level] = bucket
	return true
}

func (x *Index) remove(skill string, id, level int) bool {
	ls, ok := x.bySkill[skill]
	if !ok || !validLevel(level) {
		return false
	}
	bucket := ls[level]
	i := sort.SearchInts(bucket, id)
	if i >= len(bucket) || bucket[i] != id {
		return false
	}
	ls[level] = append(bucket[:i], bucket[i+1:]...)
	return true
}

// Move relocates id from one level bucket to another. It reports false and
// leaves the index unchanged if id is not at from or to is out of range.
func (x *Index) Move(skill string, id, from, to int) bool {
	if from == to {
		return x.Contains(skill, id, from)
	}
	if !validLevel(to) || !x.remove(skill, id, from) {
		return false
	}
	return x.Insert(skill, id, to)
}

// Contains reports whether id is registered at level for skill.
func (x *Index) Contains(skill string, id, level int) bool {
	ls, ok := x.bySkill[skill]
	if !ok || !validLevel(level) {
		return false
	}
	bucket := ls[level]
	i := sort.SearchInts(bucket, id)
	return i < len(bucket) && bucket[i] == id
}

// At returns the ids at exactly level for skill. The slice is shared and
// must not be modified by callers.
func (x *Index) At(skill string, level int) []int {
	ls, ok := x.bySkill[skill]
	if !ok || !validLevel(level) {
		return nil
	}
	return ls[level]
}

// Has reports whether skill is registered.
func (x *Index) Has(skill string) bool {
	_, ok := x.bySkill[skill]
	return ok
}

// MaxLevel returns the highest occupied level for skill, or -1.
func (x *Index) MaxLevel(skill string) int {
	ls, ok := x.bySkill[skill]
	if !ok {
		return -1
	}
	for level := model.MaxLevel; level >= model.MinLevel; level-- {
		if len(ls[level]) > 0 {
			return level
		}
	}
	return -1
}

// Skills returns the registered skill names, sorted.
func (x *Index) Skills() []string {
	out := make([]string, 0, len(x.bySkill))
	for s := range x.bySkill {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (x *Index) Clone() *Index {
	c := &Index{bySkill: make(map[string]*levelSets, len(x.bySkill))}
	for skill, ls := range x.bySkill {
		cp := &levelSets{}
		for level, bucket := range ls {
			if len(bucket) > 0 {
				cp[level] = append([]int(nil), bucket...)
			}
		}
		c.bySkill[skill] = cp
	}
	return c
}
