package config

import (
	"errors"
)

// Errors returned by Load and Validate. Both are wrapped with the offending
// key or source, so match them with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrLoadConfig    = errors.New("load configuration")
)
