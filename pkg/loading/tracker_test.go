package loading

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTrackerBusyUntilLastEnd(t *testing.T) {
	tr := NewTracker()
	if tr.Busy() {
		t.Fatalf("new tracker should be idle")
	}

	tr.Begin("categories")
	tr.Begin("products")
	tr.End("categories")
	if !tr.Busy() {
		t.Fatalf("expected busy while products pending")
	}
	if diff := cmp.Diff([]string{"products"}, tr.Pending()); diff != "" {
		t.Fatalf("pending mismatch (-want +got):\n%s", diff)
	}
	tr.End("products")
	if tr.Busy() {
		t.Fatalf("expected idle after last end")
	}
}

func TestTrackerReferenceCounts(t *testing.T) {
	var tr Tracker
	tr.Begin("op")
	tr.Begin("op")
	tr.End("op")
	if !tr.Busy() {
		t.Fatalf("expected busy with one outstanding reference")
	}
	tr.End("op")
	tr.End("op")
	if tr.Busy() {
		t.Fatalf("extra end must not leave the tracker busy")
	}
	tr.Begin("op")
	if !tr.Busy() {
		t.Fatalf("extra end must not absorb a later begin")
	}
}

// Every permutation of completion order keeps busy == (pending > 0).
func TestTrackerInterleavings(t *testing.T) {
	ops := []string{"categories", "priorities", "products", "stories"}
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		tr := NewTracker()
		order := append([]string(nil), ops...)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		for _, op := range ops {
			tr.Begin(op)
		}
		for i, op := range order {
			tr.End(op)
			remaining := len(order) - i - 1
			if got := tr.Busy(); got != (remaining > 0) {
				t.Fatalf("round %d: busy=%v with %d remaining", round, got, remaining)
			}
		}
	}
}

func TestTrackReleasesOnErrorAndPanic(t *testing.T) {
	tr := NewTracker()
	boom := errors.New("boom")

	err := tr.Track(context.Background(), "fetch", func(context.Context) error {
		if !tr.Busy() {
			t.Errorf("expected busy inside tracked fn")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if tr.Busy() {
		t.Fatalf("failed op leaked a pending entry")
	}

	func() {
		defer func() { _ = recover() }()
		_ = tr.Track(context.Background(), "fetch", func(context.Context) error {
			panic("kaboom")
		})
	}()
	if tr.Busy() {
		t.Fatalf("panicking op leaked a pending entry")
	}
}

func TestTrackerConcurrentTracks(t *testing.T) {
	tr := NewTracker()
	release := make(chan struct{})
	var started, wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		started.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.Track(context.Background(), "op", func(context.Context) error {
				started.Done()
				<-release
				return nil
			})
		}()
	}
	started.Wait()
	if got := len(tr.Pending()); got != 16 {
		t.Fatalf("expected 16 distinct op ids, got %d", got)
	}
	close(release)
	wg.Wait()
	if tr.Busy() {
		t.Fatalf("expected idle after all tracks returned")
	}
}

func TestTrackerSubscribeTransitions(t *testing.T) {
	tr := NewTracker()
	ch, cancel := tr.Subscribe()
	defer cancel()

	tr.Begin("a")
	if got := <-ch; !got {
		t.Fatalf("expected busy transition")
	}
	tr.Begin("b")
	select {
	case v := <-ch:
		t.Fatalf("unexpected transition %v while already busy", v)
	default:
	}
	tr.End("a")
	tr.End("b")
	if got := <-ch; got {
		t.Fatalf("expected idle transition")
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
}
