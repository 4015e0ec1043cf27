package session

import (
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("session not found")
)

// Store keeps live sessions in memory. The map is guarded by an RWMutex and
// every session carries its own mutex so one respondent's slow upload does
// not block the others.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *FormSession
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
	}
}

// Save inserts or replaces a session.
func (m *Store) Save(s *FormSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &entry{session: s}
}

// Update runs fn with exclusive access to the session. Transitions on one
// session are therefore applied strictly one after another.
func (m *Store) Update(id string, fn func(*FormSession) error) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Get returns a snapshot of the session that is safe to read without locks.
func (m *Store) Get(id string) (*FormSession, error) {
	var snap *FormSession
	err := m.View(id, func(s *FormSession) { snap = s.Clone() })
	return snap, err
}

// View runs fn while holding the session lock without expecting changes.
func (m *Store) View(id string, fn func(*FormSession)) error {
	return m.Update(id, func(s *FormSession) error {
		fn(s)
		return nil
	})
}

// Delete drops a session.
func (m *Store) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Store) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}
