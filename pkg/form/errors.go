package form

import "errors"

var (
	// ErrUnknownField is returned when writing to a field that was never
	// registered.
	ErrUnknownField = errors.New("form: unknown field")
)
