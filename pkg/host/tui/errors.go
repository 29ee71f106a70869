package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when the form still fails validation
	// after the configured number of passes.
	ErrTooManyAttempts = errors.New("tui: too many attempts")
	// ErrNothingPublished is returned by Run before any tree was published.
	ErrNothingPublished = errors.New("tui: no form published")
)
