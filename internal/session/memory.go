package session

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry is a process-local Registry for tests and single-node runs.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]time.Time
	clock   func() time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[string]time.Time),
		clock:   time.Now,
	}
}

// SetClock replaces the time source. Tests only.
func (m *MemoryRegistry) SetClock(clock func() time.Time) { m.clock = clock }

func (m *MemoryRegistry) Open(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key(userID, token)] = m.clock().Add(ttl)
	return nil
}

func (m *MemoryRegistry) Close(ctx context.Context, userID int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key(userID, token))
	return nil
}

func (m *MemoryRegistry) IsActive(ctx context.Context, userID int64, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(userID, token)
	exp, ok := m.entries[k]
	if !ok {
		return false, nil
	}
	if !m.clock().Before(exp) {
		delete(m.entries, k)
		return false, nil
	}
	return true, nil
}
