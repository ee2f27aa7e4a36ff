package repository

import "errors"

// Sentinel kinds for board errors.
var (
	ErrNotFound     = errors.New("branch not found")
	ErrInvalidLimit = errors.New("invalid board limit")
)
