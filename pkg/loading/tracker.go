// Package loading aggregates any number of in-flight operations into a single
// busy signal. The tracker is a reference-counted pending set: Busy reports
// true from the first Begin until the last matching End, whatever order the
// operations finish in.
package loading

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Tracker is safe for concurrent use. The zero value is ready to use.
type Tracker struct {
	mu          sync.Mutex
	pending     map[string]int
	subscribers map[int]chan bool
	nextSub     int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin adds opID to the pending set. Beginning an id that is already pending
// increments its count; it then needs one End per Begin.
func (t *Tracker) Begin(opID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	wasBusy := len(t.pending) > 0
	if t.pending == nil {
		t.pending = make(map[string]int)
	}
	t.pending[opID]++
	if !wasBusy {
		t.publishLocked(true)
	}
}

// End removes one reference to opID. Ending an id that is not pending is a
// no-op so a late or duplicated End can never drive the count negative.
func (t *Tracker) End(opID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	count, ok := t.pending[opID]
	if !ok {
		return
	}
	if count <= 1 {
		delete(t.pending, opID)
	} else {
		t.pending[opID] = count - 1
	}
	if len(t.pending) == 0 {
		t.publishLocked(false)
	}
}

// Busy reports whether any operation is pending.
func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) > 0
}

// Pending returns the sorted ids currently in flight.
func (t *Tracker) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.pending))
	for id := range t.pending {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Track runs fn under a fresh operation id derived from name. The id is
// ended when fn returns, errors or panics.
func (t *Tracker) Track(ctx context.Context, name string, fn func(context.Context) error) error {
	opID := fmt.Sprintf("%s/%s", name, uuid.NewString())
	t.Begin(opID)
	defer t.End(opID)
	return fn(ctx)
}

// Subscribe returns a channel receiving busy-state transitions and a cancel
// func that unregisters it. The channel holds only the latest transition; a
// slow reader sees the newest state rather than blocking the tracker.
func (t *Tracker) Subscribe() (<-chan bool, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.subscribers == nil {
		t.subscribers = make(map[int]chan bool)
	}
	id := t.nextSub
	t.nextSub++
	ch := make(chan bool, 1)
	t.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (t *Tracker) publishLocked(busy bool) {
	for _, ch := range t.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- busy
	}
}
