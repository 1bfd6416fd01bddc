// Package store provides the process-local KeyValueStore backends: an
// in-memory map and a JSON file that survives restarts.
package store

import (
	"context"
	"sync"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
)

// Memory is a KeyValueStore that forgets everything on exit.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

var (
	_ ports.KeyValueStore = (*Memory)(nil)
	_ ports.Pinger        = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
