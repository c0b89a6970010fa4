package sqlstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/repository/db"
)

var _ ports.RefreshTokenStore = (*refreshTokenStore)(nil)

// refreshTokenStore implements RefreshTokenStore / Implémente RefreshTokenStore
type refreshTokenStore struct {
	store
}

// NewRefreshTokenStore creates token store / Crée le magasin de tokens
func NewRefreshTokenStore(conn ports.DBTX, dialect Dialect) ports.RefreshTokenStore {
	return &refreshTokenStore{store: newStore(conn, dialect)}
}

// WithTx returns store with transaction / Retourne le magasin avec transaction
func (s *refreshTokenStore) WithTx(tx ports.DBTX) ports.RefreshTokenStore {
	return &refreshTokenStore{store: store{db: tx, dialect: s.dialect}}
}

type refreshTokenRow struct {
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
	IssueAt   time.Time `db:"issue_at"`
	ExpiresAt time.Time `db:"expires_at"`
	IsRevoked bool      `db:"is_revoked"`
	IPHash    string    `db:"ip_hash"`
	UAHash    string    `db:"ua_hash"`
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Save stores the token hashed, t is left untouched / Stocke le token haché
func (s *refreshTokenStore) Save(ctx context.Context, t *domain.RefreshToken) error {
	if t == nil {
		return errors.New("refresh token is nil")
	}

	_, err := s.exec(ctx,
		`INSERT INTO refresh_tokens (token, user_id, issue_at, expires_at, is_revoked, ip_hash, ua_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		hashToken(t.Token), t.UserID, t.IssueAt.UTC(), t.ExpiresAt.UTC(), t.IsRevoked, t.IPHash, t.UAHash,
	)
	return err
}

// Find looks a raw token up by its hash / Recherche un token brut par son hash
func (s *refreshTokenStore) Find(ctx context.Context, raw string) (*domain.RefreshToken, error) {
	var row refreshTokenRow
	err := s.get(ctx, &row,
		`SELECT token, user_id, issue_at, expires_at, is_revoked, ip_hash, ua_hash
		FROM refresh_tokens WHERE token = ?`,
		hashToken(raw),
	)
	if errors.Is(err, db.ErrNoRecord) {
		return nil, ports.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r refreshTokenRow) toDomain() *domain.RefreshToken {
	return &domain.RefreshToken{
		Token:     r.Token,
		UserID:    r.UserID,
		IssueAt:   r.IssueAt,
		ExpiresAt: r.ExpiresAt,
		IsRevoked: r.IsRevoked,
		IPHash:    r.IPHash,
		UAHash:    r.UAHash,
	}
}

// Revoke flips a live token, so two concurrent rotations cannot both win.
// Révoque un token actif, une seule rotation concurrente gagne.
func (s *refreshTokenStore) Revoke(ctx context.Context, raw string) (bool, error) {
	return s.execChanged(ctx, `UPDATE refresh_tokens SET is_revoked = ? WHERE token = ? AND is_revoked = ?`, true, hashToken(raw), false)
}

// RevokeAllForUser revokes all user tokens / Révoque tous les tokens de l'utilisateur
func (s *refreshTokenStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := s.exec(ctx, `UPDATE refresh_tokens SET is_revoked = ? WHERE user_id = ? AND is_revoked = ?`, true, userID, false)
	return err
}

// PurgeExpired deletes expired tokens / Supprime les tokens expirés
func (s *refreshTokenStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
