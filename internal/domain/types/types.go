// Package types contains the JSON shapes shared by the API, the CLIs and
// the Lambda handler.
package types

// PlanEntry is one committed allocation, contributors in role order.
type PlanEntry struct {
	Project      string   `json:"project"`
	Contributors []string `json:"contributors"`
}

// PlanResponse is a complete or in-progress plan.
type PlanResponse struct {
	RunID          string      `json:"run_id"`
	Branch         int         `json:"branch"`
	Score          int         `json:"score"`
	LearningPoints int         `json:"learning_points"`
	Day            int         `json:"day"`
	Finished       bool        `json:"finished"`
	Allocations    []PlanEntry `json:"allocations"`
}

// Stats reports run progress for monitoring.
type Stats struct {
	RunID          string `json:"run_id,omitempty"`
	Running        bool   `json:"running"`
	Runs           int    `json:"runs"`
	Day            int    `json:"day"`
	Score          int    `json:"score"`
	Committed      int    `json:"committed"`
	Branches       int    `json:"branches"`
	BranchesDone   int    `json:"branches_done"`
	QueueLength    int    `json:"queue_length"`
	LastDurationMs int64  `json:"last_duration_ms"`
}
