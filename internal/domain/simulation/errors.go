package simulation

import "errors"

// ErrInvalidAssignment is returned by Commit for an assignment that breaks
// availability, distinctness, level or mentoring rules.
var ErrInvalidAssignment = errors.New("invalid assignment")
