package graphql

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork matches any *NetworkError via errors.Is.
	ErrNetwork = errors.New("graphql: network error")
	// ErrMalformedResponse matches any *MalformedResponseError via errors.Is.
	ErrMalformedResponse = errors.New("graphql: malformed response")
	// ErrEmptyQuery is returned when a request carries no query document.
	ErrEmptyQuery = errors.New("graphql: query is required")
)

// NetworkError reports a transport failure or a non-2xx HTTP status.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("graphql: %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("graphql: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is lets callers test against ErrNetwork without caring about the cause.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// MalformedResponseError reports a response whose shape does not match what
// the caller expected.
type MalformedResponseError struct {
	Op     string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graphql: %s: malformed response: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("graphql: %s: malformed response: %s", e.Op, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

// Malformed builds a MalformedResponseError for callers that validate decoded
// payloads themselves (for example a null list where one is required).
func Malformed(op, reason string) error {
	return &MalformedResponseError{Op: op, Reason: reason}
}

// ServerError is a single entry of the GraphQL "errors" array.
type ServerError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// ResponseError wraps the errors array returned alongside (or instead of)
// data.
type ResponseError struct {
	Op     string
	Errors []ServerError
}

func (e *ResponseError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		if msg := strings.TrimSpace(item.Message); msg != "" {
			messages = append(messages, msg)
		}
	}
	if len(messages) == 0 {
		return fmt.Sprintf("graphql: %s: server returned errors", e.Op)
	}
	return fmt.Sprintf("graphql: %s: %s", e.Op, strings.Join(messages, "; "))
}
