package configstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	saveErr error
	loadErr error
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// FailSaves makes every subsequent Save return err. Pass nil to recover.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

// FailLoads makes every subsequent Load return err. Pass nil to recover.
func (m *MemoryStore) FailLoads(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}

// Put seeds a raw value, bypassing any injected failure.
func (m *MemoryStore) Put(key string, value []byte) {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), value...)
	m.mu.Unlock()
}
