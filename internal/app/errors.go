package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrPlanRunning = errors.New("a plan is already running")
	ErrQueueFull   = errors.New("branch queue rejected job")
)
