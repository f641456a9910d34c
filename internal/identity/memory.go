package identity

import (
	"context"
	"sync"
)

type Memory struct {
	mu sync.RWMutex
	id string
}

func NewMemory(initial string) *Memory {
	return &Memory{id: initial}
}

func (m *Memory) Get(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id, nil
}

func (m *Memory) Set(_ context.Context, viewerID string) error {
	id, err := normalize(viewerID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.id = id
	m.mu.Unlock()
	return nil
}
