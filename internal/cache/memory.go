package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory is the in-process Store backend.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if m.now().After(entry.expiresAt) {
		// Passive eviction on read.
		m.mu.Lock()
		if current, ok := m.entries[key]; ok && m.now().After(current.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}

	return entry.payload, true
}

func (m *Memory) Put(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{
		payload:   payload,
		expiresAt: m.now().Add(ttl),
	}
	m.mu.Unlock()
	return nil
}
