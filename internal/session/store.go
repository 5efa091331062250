// Package session provides per-visitor wizard state keyed by an opaque
// session identifier, behind a swappable Store interface with a bounded
// in-memory implementation.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// State is the mutable wizard state for one visitor.
type State struct {
	// Responses holds one answer per questionnaire question. Blank means
	// unanswered or skipped.
	Responses []string

	// Current is the index of the question the visitor is on, in
	// [0, len(Responses)-1].
	Current int

	// JobID is the identifier of the pending interpretation job, if any.
	JobID string
}

// NewState returns a fresh State with n blank responses and the index reset
// to the first question.
func NewState(n int) State {
	return State{
		Responses: make([]string, n),
	}
}

// clone returns a deep copy so callers never share the stored slice.
func (s State) clone() State {
	out := s
	out.Responses = make([]string, len(s.Responses))
	copy(out.Responses, s.Responses)
	return out
}

// Store is the session state abstraction. Implementations must be safe for
// concurrent use; the in-memory implementation below is the production
// default, and tests use the same type.
type Store interface {
	// Get returns the state for the given session ID. The boolean is
	// false when no state exists (never visited, or expired).
	Get(ctx context.Context, id string) (State, bool)

	// Put stores the state for the given session ID, resetting its
	// expiry.
	Put(ctx context.Context, id string, state State)

	// Delete removes the state for the given session ID.
	Delete(ctx context.Context, id string)
}

// memoryEntry pairs a stored state with its expiry deadline.
type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// MemoryStore is an in-memory Store with a shared TTL per entry and a
// background janitor that reaps expired sessions.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	ttl time.Duration
	log *slog.Logger

	quit chan struct{}
	wg   sync.WaitGroup
}

// DefaultSessionTTL is how long an idle session survives before the janitor
// reaps it.
const DefaultSessionTTL = 24 * time.Hour

// janitorInterval is how often expired sessions are swept.
const janitorInterval = 5 * time.Minute

// NewMemoryStore creates a MemoryStore with the given TTL. A TTL of zero
// falls back to DefaultSessionTTL.
func NewMemoryStore(ttl time.Duration, log *slog.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if log == nil {
		log = slog.Default()
	}

	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		log:     log,
		quit:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.janitor()

	return s
}

// Get returns the state for the given session ID, treating expired entries
// as absent.
func (s *MemoryStore) Get(_ context.Context, id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return State{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, id)
		return State{}, false
	}

	return entry.state.clone(), true
}

// Put stores the state for the given session ID and resets its expiry.
func (s *MemoryStore) Put(_ context.Context, id string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{
		state:     state.clone(),
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Delete removes the state for the given session ID.
func (s *MemoryStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
}

// Close stops the background janitor.
func (s *MemoryStore) Close() {
	close(s.quit)
	s.wg.Wait()
}

// janitor periodically sweeps expired sessions.
func (s *MemoryStore) janitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return

		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep removes every expired entry.
func (s *MemoryStore) sweep() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var reaped int
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
			reaped++
		}
	}

	if reaped > 0 {
		s.log.Debug("Reaped expired sessions",
			"reaped", reaped, "remaining", len(s.entries))
	}
}
