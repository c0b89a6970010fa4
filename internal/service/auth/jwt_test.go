package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-secret-key-min-32-chars-long-1234567890"

func newTestIssuer(t *testing.T, accessTTL time.Duration) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(testKey, accessTTL, 30*24*time.Hour)
	require.NoError(t, err)
	return issuer
}

func TestNewIssuer_WeakKey(t *testing.T) {
	_, err := NewIssuer("short", time.Minute, time.Hour)
	assert.ErrorIs(t, err, ErrWeakKey)
}

func TestIssuer_IssueAndParse(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		userID int64
		role   string
	}{
		{"member", 100, "user"},
		{"moderator", 200, "moderator"},
		{"admin", 300, "admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := issuer.Issue(tt.userID, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, pair.AccessToken)
			assert.Len(t, pair.RefreshToken, 2*refreshTokenBytes)
			assert.True(t, pair.RefreshExpiresAt.After(pair.ExpiresAt))

			claims, err := issuer.Parse(pair.AccessToken)
			require.NoError(t, err)
			id, err := claims.UserID()
			require.NoError(t, err)
			assert.Equal(t, tt.userID, id)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, tokenIssuer, claims.Issuer)
			assert.NotNil(t, claims.IssuedAt)
			assert.NotNil(t, claims.NotBefore)
		})
	}

	issuer.now = func() time.Time { return fixed }
	pair, err := issuer.Issue(1, "user")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(15*time.Minute), pair.ExpiresAt)
	assert.Equal(t, fixed.Add(30*24*time.Hour), pair.RefreshExpiresAt)
}

func TestIssuer_ParseRejects(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute)
	pair, err := issuer.Issue(456, "admin")
	require.NoError(t, err)

	other, err := NewIssuer("wrong-secret-key-min-32-chars-long-12345", time.Minute, time.Hour)
	require.NoError(t, err)

	expired := newTestIssuer(t, -time.Minute)
	expiredPair, err := expired.Issue(1, "user")
	require.NoError(t, err)

	sign := func(c *Claims, method jwt.SigningMethod) string {
		s, err := jwt.NewWithClaims(method, c).SignedString([]byte(testKey))
		require.NoError(t, err)
		return s
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Minute))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "invalid.token.here"},
		{"expired", expiredPair.AccessToken},
		{"other issuer", sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42", Issuer: "someone-else", ExpiresAt: future}}, jwt.SigningMethodHS256)},
		{"no expiry", sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42", Issuer: tokenIssuer}}, jwt.SigningMethodHS256)},
		{"other algorithm", sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42", Issuer: tokenIssuer, ExpiresAt: future}}, jwt.SigningMethodHS512)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Parse(tt.token)
			assert.Error(t, err)
		})
	}

	t.Run("wrong key", func(t *testing.T) {
		_, err := other.Parse(pair.AccessToken)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})
}

func TestClaims_UserID(t *testing.T) {
	tests := []struct {
		subject string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"alice", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: tt.subject}}
			got, err := c.UserID()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSubject)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIssuer_RefreshTokensAreUnique(t *testing.T) {
	issuer := newTestIssuer(t, time.Minute)
	seen := make(map[string]bool)
	for range 100 {
		pair, err := issuer.Issue(999, "user")
		require.NoError(t, err)
		require.False(t, seen[pair.RefreshToken])
		seen[pair.RefreshToken] = true
	}
}
