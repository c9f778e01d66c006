package propstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process property store.
type Memory struct {
	mu    sync.RWMutex
	props map[string]Property
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{props: make(map[string]Property)}
}

func (m *Memory) Property(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.props[key]
	return p.Value, ok, nil
}

func (m *Memory) SetProperty(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[key] = Property{Key: key, Value: value, UpdatedAt: time.Now().Unix()}
	return nil
}

func (m *Memory) List(context.Context) ([]Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	props := make([]Property, 0, len(m.props))
	for _, p := range m.props {
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool { return props[i].Key < props[j].Key })
	return props, nil
}

func (m *Memory) Close() error { return nil }
