package testinstances

import "errors"

var (
	// ErrInvalidConfig is returned for unusable run settings.
	ErrInvalidConfig = errors.New("invalid test configuration")
	// ErrVerificationFailed is returned when a plan is rejected or its
	// score disagrees with the validator.
	ErrVerificationFailed = errors.New("plan verification failed")
)
