package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is the Store used when no Redis is configured. Expired
// entries are dropped lazily on Get and in bulk by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Credentials
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Credentials),
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, creds Credentials) error {
	if sessionID == "" || creds.Token == "" || creds.Username == "" {
		return fmt.Errorf("session: missing session id, token or username")
	}
	if !creds.ExpiresAt.After(m.now()) {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = creds
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, ok := m.entries[sessionID]
	if !ok {
		return nil, nil
	}
	if !creds.ExpiresAt.After(m.now()) {
		delete(m.entries, sessionID)
		return nil, nil
	}
	return &creds, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, sessionID)
	return nil
}

// Sweep removes every entry expired at now and returns how many it dropped.
func (m *MemoryStore) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for id, creds := range m.entries {
		if !creds.ExpiresAt.After(now) {
			delete(m.entries, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
