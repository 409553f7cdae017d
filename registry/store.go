package registry

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType represents the type of store event.
type EventType string

const (
	EventSwapped EventType = "swapped"
)

// Event represents a snapshot replacement in the store.
type Event struct {
	// Type indicates what happened.
	Type EventType

	// Snapshot is the snapshot now being served.
	Snapshot *Snapshot

	// At is when the swap took effect.
	At time.Time
}

// Store holds the current registry snapshot and supports atomic
// replacement for hot reload. Readers never block: Current is a single
// atomic pointer load, so in-flight routing calls always observe one
// consistent snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]

	mu       sync.Mutex
	watchers []chan Event
	closed   bool
}

// NewStore creates a store serving the given initial snapshot.
func NewStore(initial *Snapshot) (*Store, error) {
	if initial == nil {
		return nil, ErrNilSnapshot
	}
	s := &Store{}
	s.current.Store(initial)
	return s, nil
}

// Current returns the snapshot being served.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Swap atomically replaces the served snapshot and notifies watchers.
// The previous snapshot stays valid for calls that already hold it.
func (s *Store) Swap(next *Snapshot) error {
	if next == nil {
		return ErrNilSnapshot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.current.Store(next)
	s.notifyWatchers(Event{Type: EventSwapped, Snapshot: next, At: time.Now()})
	return nil
}

// Watch returns a channel of swap events.
// The channel is closed when the store is closed.
// Multiple watchers are supported.
func (s *Store) Watch() (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	ch := make(chan Event, 16)
	s.watchers = append(s.watchers, ch)
	return ch, nil
}

// Close shuts down the store. The last snapshot remains readable so
// routing keeps working during shutdown; only swaps and new watchers
// are rejected.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.watchers {
		close(ch)
	}
	s.watchers = nil
	return nil
}

// notifyWatchers sends an event to all watchers.
// Must be called with the mutex held.
func (s *Store) notifyWatchers(event Event) {
	for _, ch := range s.watchers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}
