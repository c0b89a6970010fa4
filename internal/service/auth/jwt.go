package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer       = "familyhub"
	minKeyLength      = 32
	refreshTokenBytes = 32
)

var (
	// ErrWeakKey is returned for signing keys shorter than 32 bytes / Clé de signature trop courte
	ErrWeakKey = errors.New("jwt signing key must be at least 32 bytes")
	// ErrInvalidSubject is returned when the subject is not a member id
	ErrInvalidSubject = errors.New("jwt subject is not a valid user id")
)

// Claims carries the member id in Subject and the role at issue time / Porte l'id du membre et son rôle
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// UserID parses the subject / Analyse le sujet
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidSubject
	}
	return id, nil
}

// TokenPair is what a successful login or refresh hands back / Résultat d'une connexion ou d'un renouvellement
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"-"`
}

// Issuer signs and verifies HS256 access tokens / Signe et vérifie les tokens d'accès HS256
type Issuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	parser     *jwt.Parser
	now        func() time.Time
}

// NewIssuer checks the key once so logins cannot fail on it later / Vérifie la clé une seule fois
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if len(secret) < minKeyLength {
		return nil, ErrWeakKey
	}
	return &Issuer{
		key:        []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}, nil
}

// Issue signs an access token and draws a fresh refresh token / Signe un token d'accès et tire un refresh token
func (i *Issuer) Issue(userID int64, role string) (*TokenPair, error) {
	now := i.now()
	expiresAt := now.Add(i.accessTTL)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: role,
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := randomToken(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresAt:        expiresAt,
		RefreshExpiresAt: now.Add(i.refreshTTL),
	}, nil
}

// Parse verifies signature, issuer and expiry / Vérifie signature, émetteur et expiration
func (i *Issuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, err := i.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	}); err != nil {
		return nil, err
	}
	return claims, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
