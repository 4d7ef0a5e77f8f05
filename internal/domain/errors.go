package domain

import "errors"

var (
	// ErrInvalidParameter marks malformed numeric input to one of the pure
	// calculators. It is always a caller contract violation, never recovered.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrWindowExhausted is returned when a caller tries to start another
	// observation day after the configured window has been consumed.
	ErrWindowExhausted = errors.New("validation window exhausted")

	// ErrRunIncomplete is returned when a run is finalized (or abandoned)
	// before every day of the window has been observed.
	ErrRunIncomplete = errors.New("validation run incomplete")

	// ErrEmptyRun is the terminal outcome of a window that produced no
	// observations at all. It is reported, not a crash: the verdict is
	// "no data, fail closed".
	ErrEmptyRun = errors.New("no observations recorded")

	// ErrNotFound is returned by caches and stores for missing keys.
	ErrNotFound = errors.New("not found")
)
