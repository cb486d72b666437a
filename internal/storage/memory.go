package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Collection. LoadErr and SaveErr, when set, are
// returned instead of touching the data.
type Memory struct {
	mu      sync.Mutex
	data    []byte
	exists  bool
	loads   int
	saves   int
	LoadErr error
	SaveErr error
}

func NewMemory(initial []byte) *Memory {
	m := &Memory{}
	if initial != nil {
		m.data = append([]byte(nil), initial...)
		m.exists = true
	}
	return m
}

func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if !m.exists {
		return nil, ErrNotExist
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.data = append([]byte(nil), data...)
	m.exists = true
	return nil
}

// Bytes returns a copy of the stored blob, nil if nothing was saved.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil
	}
	return append([]byte(nil), m.data...)
}

func (m *Memory) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
