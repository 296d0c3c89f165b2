package publish

import (
	"context"
	"sync"
)

// MemoryHandles is a process-local HandleStore. Handles are lost on restart,
// so a restarted service publishes a fresh card.
type MemoryHandles struct {
	mu      sync.RWMutex
	handles map[string]string
}

func NewMemoryHandles() *MemoryHandles {
	return &MemoryHandles{handles: make(map[string]string)}
}

func (m *MemoryHandles) Load(_ context.Context, subscription string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.handles[subscription]
	if !ok {
		return "", ErrNoHandle
	}
	return id, nil
}

func (m *MemoryHandles) Save(_ context.Context, subscription, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles[subscription] = messageID
	return nil
}

func (m *MemoryHandles) Delete(_ context.Context, subscription string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handles, subscription)
	return nil
}
