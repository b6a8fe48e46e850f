package authstate

import "sync"

// MemoryStore is a thread-safe in-memory implementation of the Store
// interface. State does not survive a process restart, so it is suited to
// tests and to the redirector service rather than the mobile client.
type MemoryStore struct {
	mu      sync.RWMutex
	pending *PendingState
}

// NewMemoryStore creates a new in-memory pending-auth state store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores or replaces the pending auth state
func (s *MemoryStore) Save(state PendingState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external modifications
	stored := state
	s.pending = &stored
	return nil
}

// Load retrieves the pending auth state, or nil if none is stored
func (s *MemoryStore) Load() (*PendingState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pending == nil {
		return nil, nil
	}

	// Return a copy to prevent external modifications
	loaded := *s.pending
	return &loaded, nil
}

// Clear is idempotent; clearing an empty store succeeds.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	return nil
}
