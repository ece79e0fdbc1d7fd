package domain

import "errors"

// Core error taxonomy. Acquisition failures never cross the session boundary
// as errors — they become terminal statuses with a message. Matcher and
// allocator failures are returned explicitly and callers must branch on them.
var (
	// ErrUnsupported means no positioning capability is available in this runtime.
	ErrUnsupported = errors.New("positioning capability unsupported")

	// ErrPermissionDenied means the user refused the positioning prompt.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrUnavailable means the sensor could not resolve a position.
	ErrUnavailable = errors.New("position unavailable")

	// ErrTimeout means no sensor response arrived within the configured timeout.
	ErrTimeout = errors.New("location acquisition timed out")

	// ErrInvalidInput marks a malformed location or show candidate.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutOfRange marks a donation amount outside the configured bounds.
	ErrOutOfRange = errors.New("amount out of range")

	// ErrInvalidConfiguration marks a rate table that cannot produce a valid split.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrSessionNotFound marks an unknown acquisition session id.
	ErrSessionNotFound = errors.New("session not found")
)
