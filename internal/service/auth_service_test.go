package service

import (
	"context"
	"testing"
	"time"

	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/mocks"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/repository"
	"github.com/Olprog59/go-familyhub/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-testing-purposes-only"

var authTestPolicy = config.SecurityConfig{
	MaxFailedAttempts: 3,
	LockoutDuration:   15 * time.Minute,
	BcryptCost:        bcrypt.MinCost,
}

func testIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	issuer, err := auth.NewIssuer(testSecret, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)
	return issuer
}

// newAuthFixture returns an auth service over a migrated SQLite database with one member
func newAuthFixture(t *testing.T) (*AuthService, *domain.User, ports.RefreshTokenStore) {
	t.Helper()
	adapter, db := repository.NewTestAdapter(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := adapter.UserRepository().Create(context.Background(), "test@example.com", string(hashed), "Test")
	require.NoError(t, err)

	store := adapter.RefreshTokenStore()
	svc := NewAuthService(adapter.UserRepository(), store, testIssuer(t), authTestPolicy, db, mocks.NewMockMetrics())
	return svc, user, store
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, user, store := newAuthFixture(t)
	ctx := context.Background()

	returned, pair, err := svc.Login(ctx, "test@example.com", "Password123!", "ip-hash", "ua-hash")
	require.NoError(t, err)
	assert.Equal(t, user.ID, returned.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, err := store.Find(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ip-hash", stored.IPHash)
	assert.Equal(t, "ua-hash", stored.UAHash)
	assert.False(t, stored.IsRevoked)
}

func TestAuthService_Login_RevokesPreviousTokens(t *testing.T) {
	svc, _, store := newAuthFixture(t)
	ctx := context.Background()

	_, first, err := svc.Login(ctx, "test@example.com", "Password123!", "ip", "ua")
	require.NoError(t, err)
	_, second, err := svc.Login(ctx, "test@example.com", "Password123!", "ip", "ua")
	require.NoError(t, err)

	old, err := store.Find(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.True(t, old.IsRevoked)

	current, err := store.Find(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.False(t, current.IsRevoked)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "test@example.com", "Wrong123!", "ip", "ua")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_LocksAfterMaxAttempts(t *testing.T) {
	svc, user, _ := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := svc.Login(ctx, "test@example.com", "Wrong123!", "ip", "ua")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, _, err := svc.Login(ctx, "test@example.com", "Wrong123!", "ip", "ua")
	require.ErrorIs(t, err, ErrAccountLocked)
	assert.Contains(t, err.Error(), "15 minutes")

	// Even the right password is refused while locked
	_, _, err = svc.Login(ctx, "test@example.com", "Password123!", "ip", "ua")
	assert.ErrorIs(t, err, ErrAccountLocked)

	locked, err := svc.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked())
}

func TestAuthService_Login_LockoutWithMocks(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	until := time.Now().Add(5 * time.Minute)
	repo.AddUser(&domain.User{Email: "locked@example.com", Password: string(hashed), LockedUntil: &until})
	metrics := mocks.NewMockMetrics()

	svc := NewAuthService(repo, mocks.NewMockRefreshTokenStore(), testIssuer(t), authTestPolicy, nil, metrics)

	_, _, err := svc.Login(context.Background(), "locked@example.com", "Password123!", "ip", "ua")
	assert.ErrorIs(t, err, ErrAccountLocked)
	assert.Equal(t, 1, metrics.AccountLockoutCalls)
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	svc, user, store := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.RefreshToken{
		Token:     "valid-token-12345",
		UserID:    user.ID,
		IssueAt:   time.Now(),
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		IPHash:    "test-ip-hash",
		UAHash:    "test-ua-hash",
	}))

	pair, err := svc.RefreshToken(ctx, "valid-token-12345", "test-ip-hash", "test-ua-hash")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, "valid-token-12345", pair.RefreshToken)

	// Rotation: the old token cannot be reused
	_, err = svc.RefreshToken(ctx, "valid-token-12345", "test-ip-hash", "test-ua-hash")
	assert.ErrorIs(t, err, ErrRevokedRefreshToken)

	// The new token keeps the binding
	_, err = svc.RefreshToken(ctx, pair.RefreshToken, "test-ip-hash", "test-ua-hash")
	assert.NoError(t, err)
}

func TestAuthService_RefreshToken_Failures(t *testing.T) {
	svc, user, store := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.RefreshToken{
		Token:     "expired-token",
		UserID:    user.ID,
		IssueAt:   time.Now().Add(-31 * 24 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
		IPHash:    "ip-hash",
		UAHash:    "ua-hash",
	}))
	require.NoError(t, store.Save(ctx, &domain.RefreshToken{
		Token:     "bound-token",
		UserID:    user.ID,
		IssueAt:   time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
		IPHash:    "ip-hash",
		UAHash:    "ua-hash",
	}))

	tests := []struct {
		name      string
		token     string
		ipHash    string
		uaHash    string
		expectErr error
	}{
		{name: "unknown token", token: "missing", ipHash: "ip-hash", uaHash: "ua-hash", expectErr: ErrInvalidRefreshToken},
		{name: "expired token", token: "expired-token", ipHash: "ip-hash", uaHash: "ua-hash", expectErr: ErrExpiredRefreshToken},
		{name: "different ip", token: "bound-token", ipHash: "other-ip", uaHash: "ua-hash", expectErr: ErrTokenBinding},
		{name: "different user agent", token: "bound-token", ipHash: "ip-hash", uaHash: "other-ua", expectErr: ErrTokenBinding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := svc.RefreshToken(ctx, tt.token, tt.ipHash, tt.uaHash)
			assert.ErrorIs(t, err, tt.expectErr)
			assert.Nil(t, pair)
		})
	}
}

func TestAuthService_RevokeAllTokens(t *testing.T) {
	svc, _, store := newAuthFixture(t)
	ctx := context.Background()

	user, pair, err := svc.Login(ctx, "test@example.com", "Password123!", "ip", "ua")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllTokens(ctx, user.ID))

	stored, err := store.Find(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, stored.IsRevoked)
}

func TestAuthService_Login_EmailIsCaseInsensitive(t *testing.T) {
	svc, user, _ := newAuthFixture(t)

	got, _, err := svc.Login(context.Background(), "  TEST@Example.com ", "Password123!", "ip", "ua")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthService_Login_ResetsFailureCount(t *testing.T) {
	svc, user, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "test@example.com", "Wrong123!", "ip", "ua")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "test@example.com", "Password123!", "ip", "ua")
	require.NoError(t, err)

	fresh, err := svc.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, fresh.FailedLoginAttempts)
}

// lostRaceStore behaves as if a concurrent refresh revoked the token first
type lostRaceStore struct {
	ports.RefreshTokenStore
}

func (s lostRaceStore) WithTx(tx ports.DBTX) ports.RefreshTokenStore {
	return lostRaceStore{s.RefreshTokenStore.WithTx(tx)}
}

func (lostRaceStore) Revoke(context.Context, string) (bool, error) {
	return false, nil
}

func TestAuthService_RefreshToken_LostRace(t *testing.T) {
	svc, user, store := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domain.RefreshToken{
		Token:     "raced-token",
		UserID:    user.ID,
		IssueAt:   time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
		IPHash:    "ip",
		UAHash:    "ua",
	}))
	svc.refresh = lostRaceStore{store}

	pair, err := svc.RefreshToken(ctx, "raced-token", "ip", "ua")
	assert.ErrorIs(t, err, ErrRevokedRefreshToken)
	assert.Nil(t, pair)
}
