package form

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Field names used by the new story form.
const (
	FieldTitle       = "title"
	FieldCode        = "code"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldPriority    = "priority"
	FieldProduct     = "product"
)

// ErrorKind classifies a field error.
type ErrorKind string

// ErrorRequired marks a required field that is undefined or empty.
const ErrorRequired ErrorKind = "required"

// Constraints declares how a field is validated.
type Constraints struct {
	Required bool
}

// Values is a snapshot of the form. Description is nil until the rich-text
// editor reports content for the first time.
type Values struct {
	Title          string
	SourceCodeLink string
	Description    *string
	Category       string
	Priority       string
	Product        string
}

// DescriptionText returns the description or "" when undefined.
func (v Values) DescriptionText() string {
	if v.Description == nil {
		return ""
	}
	return *v.Description
}

// HasDescription treats undefined, empty and whitespace-only as the same
// missing condition.
func (v Values) HasDescription() bool {
	return v.Description != nil && !blank(*v.Description)
}

// blank is the single emptiness rule shared by error clearing, required
// checks and the description check.
func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// State holds registered fields, their current values and per-field errors.
// It is safe for concurrent use; watchers run outside the lock.
type State struct {
	mu       sync.RWMutex
	fields   map[string]Constraints
	order    []string
	values   map[string]string
	errors   map[string]ErrorKind
	watchers map[string]map[int]func(string)
	nextID   int
}

// New returns an empty state with no registered fields.
func New() *State {
	return &State{
		fields:   make(map[string]Constraints),
		values:   make(map[string]string),
		errors:   make(map[string]ErrorKind),
		watchers: make(map[string]map[int]func(string)),
	}
}

// NewStoryForm registers the new story fields. The description is registered
// up front because the editor never emits ordinary field events; its
// presence is enforced by the submission flow rather than by Required.
func NewStoryForm() *State {
	s := New()
	s.Register(FieldDescription, Constraints{})
	s.Register(FieldTitle, Constraints{Required: true})
	s.Register(FieldCode, Constraints{Required: true})
	s.Register(FieldCategory, Constraints{Required: true})
	s.Register(FieldPriority, Constraints{Required: true})
	s.Register(FieldProduct, Constraints{Required: true})
	return s
}

// Register declares name with its constraints. Registering again replaces
// the constraints and keeps the current value.
func (s *State) Register(name string, constraints Constraints) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.fields[name]; !exists {
		s.order = append(s.order, name)
	}
	s.fields[name] = constraints
}

// Registered reports whether name has been registered.
func (s *State) Registered(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fields[name]
	return ok
}

// Fields returns registered field names in registration order.
func (s *State) Fields() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// SetValue stores value for a registered field from any source (input event,
// editor callback, prompt). A non-blank value clears the field's error; a
// blank value leaves errors untouched until the next submit attempt.
func (s *State) SetValue(name, value string) error {
	s.mu.Lock()
	if _, ok := s.fields[name]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	s.values[name] = value
	if !blank(value) {
		delete(s.errors, name)
	}
	watchers := make([]func(string), 0, len(s.watchers[name]))
	for _, fn := range s.watchers[name] {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(value)
	}
	return nil
}

// Value returns the value of name and whether it was ever set.
func (s *State) Value(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Watch returns the live value of name, "" when unset.
func (s *State) Watch(name string) string {
	v, _ := s.Value(name)
	return v
}

// Subscribe registers fn to receive every value written to name. The
// returned func removes the subscription.
func (s *State) Subscribe(name string, fn func(string)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	if s.watchers[name] == nil {
		s.watchers[name] = make(map[int]func(string))
	}
	s.watchers[name][id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers[name], id)
	}
}

// SetError attaches an error to a registered field.
func (s *State) SetError(name string, kind ErrorKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fields[name]; ok {
		s.errors[name] = kind
	}
}

// ClearError removes the error attached to name.
func (s *State) ClearError(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errors, name)
}

// Error returns the error kind for name, "" when the field is valid.
func (s *State) Error(name string) ErrorKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors[name]
}

// Errors returns a copy of the current errors.
func (s *State) Errors() map[string]ErrorKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]ErrorKind, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// ValidateOnSubmit recomputes errors for every constrained field and returns
// the sorted names of the fields that violate their constraints. Errors on
// unconstrained fields (set through SetError) are left alone.
func (s *State) ValidateOnSubmit() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var violated []string
	for name, constraints := range s.fields {
		if !constraints.Required {
			continue
		}
		if blank(s.values[name]) {
			s.errors[name] = ErrorRequired
			violated = append(violated, name)
			continue
		}
		delete(s.errors, name)
	}
	sort.Strings(violated)
	return violated
}

// Snapshot copies the story fields into a Values struct.
func (s *State) Snapshot() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Values{
		Title:          s.values[FieldTitle],
		SourceCodeLink: s.values[FieldCode],
		Category:       s.values[FieldCategory],
		Priority:       s.values[FieldPriority],
		Product:        s.values[FieldProduct],
	}
	if desc, ok := s.values[FieldDescription]; ok {
		out.Description = &desc
	}
	return out
}
