package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

var _ ports.RefreshTokenStore = (*MockRefreshTokenStore)(nil)

// MockRefreshTokenStore keeps tokens in memory keyed by their raw value
type MockRefreshTokenStore struct {
	mu sync.Mutex

	Tokens map[string]*domain.RefreshToken

	// Err fails every call when set
	Err error

	RevokeAllCalls int
	PurgeCalls     int
}

func NewMockRefreshTokenStore() *MockRefreshTokenStore {
	return &MockRefreshTokenStore{Tokens: make(map[string]*domain.RefreshToken)}
}

func (m *MockRefreshTokenStore) Save(_ context.Context, token *domain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored := *token
	m.Tokens[token.Token] = &stored
	return nil
}

func (m *MockRefreshTokenStore) Find(_ context.Context, raw string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	token, ok := m.Tokens[raw]
	if !ok {
		return nil, ports.ErrTokenNotFound
	}
	found := *token
	return &found, nil
}

func (m *MockRefreshTokenStore) Revoke(_ context.Context, raw string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	token, ok := m.Tokens[raw]
	if !ok || token.IsRevoked {
		return false, nil
	}
	token.IsRevoked = true
	return true, nil
}

func (m *MockRefreshTokenStore) RevokeAllForUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RevokeAllCalls++
	if m.Err != nil {
		return m.Err
	}
	for _, token := range m.Tokens {
		if token.UserID == userID {
			token.IsRevoked = true
		}
	}
	return nil
}

func (m *MockRefreshTokenStore) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PurgeCalls++
	if m.Err != nil {
		return 0, m.Err
	}
	var purged int64
	for raw, token := range m.Tokens {
		if token.ExpiresAt.Before(before) {
			delete(m.Tokens, raw)
			purged++
		}
	}
	return purged, nil
}

// WithTx returns the same store, the mock has no transactions
func (m *MockRefreshTokenStore) WithTx(ports.DBTX) ports.RefreshTokenStore {
	return m
}
