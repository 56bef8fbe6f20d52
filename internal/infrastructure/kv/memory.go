package kv

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Backend. Values are stored JSON-encoded so reads
// behave exactly like a persistent backend.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) (any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, false, ErrClosed
	}
	raw, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	value, err := decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.data[key] = raw
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.data = make(map[string][]byte)
	return nil
}

func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Apply encodes every value first so a bad value leaves the store untouched.
func (m *Memory) Apply(_ context.Context, ops []Op) error {
	encoded := make([][]byte, len(ops))
	for i, op := range ops {
		if op.Kind != OpSet {
			continue
		}
		raw, err := encode(op.Value)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", op.Key, err)
		}
		encoded[i] = raw
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for i, op := range ops {
		switch op.Kind {
		case OpSet:
			m.data[op.Key] = encoded[i]
		case OpRemove:
			delete(m.data, op.Key)
		}
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
