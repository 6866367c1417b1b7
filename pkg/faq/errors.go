package faq

import "errors"

// Domain errors shared across the service.
var (
	// Entry validation errors
	ErrMissingID     = errors.New("faq id is required")
	ErrEmptyQuestion = errors.New("question cannot be empty")
	ErrEmptyAnswer   = errors.New("answer cannot be empty")

	// Search errors, surfaced to callers
	ErrEmptyQuery  = errors.New("query cannot be empty")
	ErrInvalidTopK = errors.New("top_k must be a positive integer")

	// ErrIndexNotReady is returned when a search gives up waiting for the
	// first snapshot build.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrProviderUnavailable wraps embedding provider failures. Searches
	// recover from it by degrading to lexical-only scoring.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrConfigInvalid is returned for bad weight configuration. It is
	// fatal at startup; searches never run with invalid weights.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrNotFound is returned when a requested FAQ does not exist.
	ErrNotFound = errors.New("faq not found")

	// ErrAlreadyExists is returned when appending an entry whose id is taken.
	ErrAlreadyExists = errors.New("faq already exists")
)
