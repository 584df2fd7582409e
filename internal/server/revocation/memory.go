package revocation

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Registry. Entries are dropped lazily once
// their expiry passes.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time), now: time.Now}
}

func (m *Memory) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.IsZero() && !expiresAt.After(m.now()) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[fingerprint(token)] = expiresAt
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, token string) (bool, error) {
	key := fingerprint(token)

	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if !exp.IsZero() && !exp.After(m.now()) {
		delete(m.entries, key)
		return false, nil
	}
	return true, nil
}

// Len reports how many entries are currently held, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
