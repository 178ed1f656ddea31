package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrMalformedTemplate = errors.New("malformed template")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrInvalidConfig     = errors.New("invalid configuration")
)
