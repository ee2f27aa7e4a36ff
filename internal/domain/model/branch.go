package model

// BranchJob asks a worker to play out a whole schedule from a forced opening.
type BranchJob struct {
	ID int
	// Opening is the project staffed first on day 0, or -1 for none.
	Opening int
	Seed    int64
}

// BranchOutcome is the finished schedule of one branch.
type BranchOutcome struct {
	Branch         int
	Opening        int
	Score          int
	LearningPoints int
	Day            int
	Allocations    []Allocation
}
