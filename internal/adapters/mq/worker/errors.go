package worker

import "errors"

// ErrStopped is returned by Pool.Wait when workers were stopped before the
// queue was drained.
var ErrStopped = errors.New("worker stopped")
