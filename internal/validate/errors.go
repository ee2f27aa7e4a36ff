package validate

import "errors"

// ErrInvalidPlan wraps every rejection; the more specific kinds below are
// wrapped alongside it.
var ErrInvalidPlan = errors.New("invalid plan")

// Sentinel kinds for plan rejections.
var (
	ErrDuplicateProject   = errors.New("project planned twice")
	ErrUnknownProject     = errors.New("unknown project")
	ErrUnknownContributor = errors.New("unknown contributor")
	ErrRoleMismatch       = errors.New("contributor count does not match roles")
	ErrSkillTooLow        = errors.New("skill level too low")
	ErrMissingMentor      = errors.New("no mentor for role")
	ErrDoubleBooked       = errors.New("contributor fills two roles")
)
