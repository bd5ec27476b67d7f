package cache

import (
	"context"
	"sync"
)

// Memory is an in-process Registry. It keeps a log of every invalidated key.
type Memory struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
	subscribers []func(key string)
}

// NewMemory returns an empty in-process registry.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

var _ Registry = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.mu.Lock()
	m.entries[key] = v
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(_ context.Context, key string) error {
	m.Evict(key)
	m.mu.Lock()
	m.invalidated = append(m.invalidated, key)
	subs := append([]func(string){}, m.subscribers...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
	return nil
}

// Evict drops key and its descendants without logging or notifying subscribers.
func (m *Memory) Evict(key string) {
	m.mu.Lock()
	for k := range m.entries {
		if Covers(key, k) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
}

// Subscribe registers fn to be called with every invalidated key.
func (m *Memory) Subscribe(fn func(key string)) {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.mu.Unlock()
}

// Invalidated returns the keys invalidated so far, in order.
func (m *Memory) Invalidated() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.invalidated...)
}

// Reset forgets the invalidation log.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.invalidated = nil
	m.mu.Unlock()
}
