package service

import (
	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/domain/types"
)

// Plan is the schedule produced by one Service.Plan call.
type Plan struct {
	RunID string
	// Branch is the explored branch the plan came from; 0 is plain greedy.
	Branch         int
	Allocations    []model.NamedAllocation
	Score          int
	LearningPoints int
	Day            int
}

func newPlan(runID string, in *model.Instance, o model.BranchOutcome) *Plan {
	p := &Plan{
		RunID:          runID,
		Branch:         o.Branch,
		Allocations:    make([]model.NamedAllocation, len(o.Allocations)),
		Score:          o.Score,
		LearningPoints: o.LearningPoints,
		Day:            o.Day,
	}
	for i, a := range o.Allocations {
		p.Allocations[i] = in.Named(a)
	}
	return p
}

// Response converts the plan to its JSON shape.
func (p *Plan) Response(finished bool) types.PlanResponse {
	entries := make([]types.PlanEntry, len(p.Allocations))
	for i, a := range p.Allocations {
		entries[i] = types.PlanEntry{Project: a.Project, Contributors: a.Contributors}
	}
	return types.PlanResponse{
		RunID:          p.RunID,
		Branch:         p.Branch,
		Score:          p.Score,
		LearningPoints: p.LearningPoints,
		Day:            p.Day,
		Finished:       finished,
		Allocations:    entries,
	}
}
