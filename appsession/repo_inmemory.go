package appsession

import "sync"

// InMemoryRepo is an in-memory implementation of the session Repo
type InMemoryRepo struct {
	mu      sync.RWMutex
	current *Session
}

// NewInMemoryRepo creates a new in-memory app session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{}
}

// Set stores or replaces the current session
func (r *InMemoryRepo) Set(session Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	stored := session
	r.current = &stored
	return nil
}

// Current returns the active session, or nil when none is set
func (r *InMemoryRepo) Current() (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return nil, nil
	}
	session := *r.current
	return &session, nil
}

// Clear removes the current session
func (r *InMemoryRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = nil
	return nil
}
