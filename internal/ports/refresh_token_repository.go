package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
)

// ErrTokenNotFound is returned by Find for unknown tokens / Token inconnu
var ErrTokenNotFound = errors.New("refresh token not found")

// RefreshTokenStore persists refresh tokens hashed, callers always pass the raw value.
// Stocke les refresh tokens hachés, l'appelant passe toujours la valeur brute.
type RefreshTokenStore interface {
	Save(ctx context.Context, token *domain.RefreshToken) error

	// Find returns the stored record, Token holds the hash / Retourne l'enregistrement stocké
	Find(ctx context.Context, raw string) (*domain.RefreshToken, error)

	// Revoke reports false when the token was unknown or already revoked.
	// Retourne false si le token était inconnu ou déjà révoqué.
	Revoke(ctx context.Context, raw string) (bool, error)

	RevokeAllForUser(ctx context.Context, userID int64) error

	// PurgeExpired deletes tokens expired before the cutoff / Supprime les tokens expirés
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)

	WithTx(tx DBTX) RefreshTokenStore
}
