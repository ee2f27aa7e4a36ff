package instance

import "errors"

// Sentinel kinds for instance and plan I/O errors.
var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrSchemaViolation   = errors.New("instance does not match schema")
)
