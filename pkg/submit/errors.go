package submit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDescriptionRequired is reported when the rich-text description is
	// undefined or empty.
	ErrDescriptionRequired = errors.New("submit: description is required")
	// ErrSubmitInFlight rejects a submit while a mutation is outstanding.
	ErrSubmitInFlight = errors.New("submit: submission already in flight")
	// ErrAlreadySubmitted rejects a submit after the story was created.
	ErrAlreadySubmitted = errors.New("submit: story already submitted")
)

// ValidationError lists the fields that failed validation. It is
// user-visible and never fatal.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("submit: missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Is matches ErrDescriptionRequired when the description is among the
// missing fields.
func (e *ValidationError) Is(target error) bool {
	if target != ErrDescriptionRequired {
		return false
	}
	for _, f := range e.Fields {
		if f == "description" {
			return true
		}
	}
	return false
}

// SubmissionError wraps a failed mutation. The form keeps its values so the
// user can retry.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit: create story: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
