package api

import (
	"net/http"

	"github.com/okian/staffing/internal/domain/types"
)

// PlanProvider exposes the best plan known so far.
type PlanProvider interface {
	CurrentPlan() (types.PlanResponse, bool)
}

// PlanHandler handles plan requests.
type PlanHandler struct {
	plans PlanProvider
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(plans PlanProvider) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// HandlePlan handles GET /plan requests. It answers 404 until a run starts.
func (h *PlanHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.plans.CurrentPlan()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrNoPlan)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
