package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// --- Unit Tests ---

func TestStopRunsClosersInPhaseOrder(t *testing.T) {
	c := New(nil, time.Second)

	var mu sync.Mutex
	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	c.RegisterFunc("index", record("index"), PhaseIndexes)
	c.RegisterFunc("watcher", record("watcher"), PhaseWatchers)
	c.RegisterFunc("store", record("store"), PhaseStores)

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	want := []string{"watcher", "store", "index"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestStopSecondCallReturnsFirstOutcome(t *testing.T) {
	c := New(nil, time.Second)
	c.RegisterFunc("ok", func(context.Context) error { return nil }, PhaseStores)

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Errorf("second Stop = %v, want nil (first outcome)", err)
	}
}

func TestStopCollectsFailures(t *testing.T) {
	c := New(nil, time.Second)
	boom := errors.New("boom")
	c.RegisterFunc("bad", func(context.Context) error { return boom }, PhaseWatchers)
	c.RegisterFunc("good", func(context.Context) error { return nil }, PhaseStores)

	err := c.Stop(context.Background())
	if !errors.Is(err, ErrCloserFailed) {
		t.Fatalf("Stop = %v, want ErrCloserFailed", err)
	}

	results := c.Results()
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// Later phases still ran.
	if results[1].Name != "good" || results[1].Err != nil {
		t.Errorf("good closer result = %+v, want success", results[1])
	}
}

func TestStopTimeout(t *testing.T) {
	c := New(nil, time.Second)
	c.RegisterFunc("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, PhaseWatchers)
	c.RegisterFunc("never", func(context.Context) error { return nil }, PhaseStores)

	err := c.StopWithTimeout(50 * time.Millisecond)
	if !errors.Is(err, ErrCloserFailed) && !errors.Is(err, ErrTimeout) {
		t.Fatalf("Stop = %v, want failure", err)
	}
}

func TestSamePhaseRunsConcurrently(t *testing.T) {
	c := New(nil, time.Second)

	block := make(chan struct{})
	c.RegisterFunc("a", func(context.Context) error {
		<-block
		return nil
	}, PhaseStores)
	c.RegisterFunc("b", func(context.Context) error {
		close(block) // only reachable if a and b run together
		return nil
	}, PhaseStores)

	done := make(chan error, 1)
	go func() { done <- c.Stop(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("same-phase closers did not run concurrently")
	}
}

func TestTriggerStartsTeardown(t *testing.T) {
	c := New(nil, time.Second)
	c.RegisterFunc("ok", func(context.Context) error { return nil }, PhaseStores)

	c.HandleSignals()
	c.Trigger()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("teardown did not start after Trigger")
	}

	if got := len(c.Results()); got != 1 {
		t.Errorf("got %d results, want 1", got)
	}
}

func TestResultsNilBeforeDone(t *testing.T) {
	c := New(nil, time.Second)
	if c.Results() != nil {
		t.Error("Results should be nil before teardown completes")
	}
}
