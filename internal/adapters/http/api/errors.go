package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrNoPlan           = errors.New("no plan yet")
	ErrMethodNotAllowed = errors.New("method not allowed")
)
