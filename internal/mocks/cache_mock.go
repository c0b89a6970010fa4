package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/goccy/go-json"
)

var _ ports.Cache = (*MockCache)(nil)

// MockCache is an in-memory JSON cache ignoring TTLs
type MockCache struct {
	mu      sync.Mutex
	Entries map[string][]byte
	GetErr  error

	Deleted []string
}

func NewMockCache() *MockCache {
	return &MockCache{Entries: make(map[string][]byte)}
}

func (m *MockCache) GetJSON(ctx context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return m.GetErr
	}
	raw, ok := m.Entries[key]
	if !ok {
		return ports.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *MockCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[key] = raw
	return nil
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.Entries, k)
		m.Deleted = append(m.Deleted, k)
	}
	return nil
}

func (m *MockCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Entries[key]
	return ok
}

func (m *MockCache) Ping(ctx context.Context) error { return nil }

func (m *MockCache) Close() error { return nil }
