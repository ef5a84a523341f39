package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrCancelled is returned when the user declines to submit.
	ErrCancelled = errors.New("tui: submission cancelled")
	// ErrNoWorkflow is returned when Fill or Run receives a nil workflow.
	ErrNoWorkflow = errors.New("tui: workflow is nil")
)
