package repository

import (
	"context"
	"sync"
	"time"
)

type sessionEntry struct {
	value     string
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process. Expired entries are dropped
// on read and swept on write.
type MemorySessionStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]sessionEntry
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]sessionEntry),
	}
}

func (m *MemorySessionStore) Get(_ context.Context, sessionID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[sessionID]
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.data, sessionID)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *MemorySessionStore) Set(_ context.Context, sessionID string, applicationNumber string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.data {
		if !now.Before(e.expiresAt) {
			delete(m.data, k)
		}
	}
	m.data[sessionID] = sessionEntry{value: applicationNumber, expiresAt: now.Add(m.ttl)}
	return nil
}
