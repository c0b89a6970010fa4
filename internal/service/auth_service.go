package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/service/auth"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const lockPruneInterval = 15 * time.Minute

// AuthMetricsRecorder records auth metrics / Enregistre les métriques d'authentification
type AuthMetricsRecorder interface {
	RecordAccountLockout()
}

// AuthService handles login, refresh rotation and logout / Gère connexion, rotation et déconnexion
type AuthService struct {
	users    ports.UserReader
	security ports.AccountSecurityRepository
	refresh  ports.RefreshTokenStore
	tokens   *auth.Issuer
	policy   config.SecurityConfig
	db       *sqlx.DB
	locks    *memberLocks
	metrics  AuthMetricsRecorder
	now      func() time.Time
}

// NewAuthService creates authentication service instance / Crée une instance de service d'authentification
func NewAuthService(
	repo ports.UserRepository,
	refresh ports.RefreshTokenStore,
	tokens *auth.Issuer,
	policy config.SecurityConfig,
	db *sqlx.DB,
	metrics AuthMetricsRecorder,
) *AuthService {
	return &AuthService{
		users:    repo,
		security: repo,
		refresh:  refresh,
		tokens:   tokens,
		policy:   policy,
		db:       db,
		locks:    newMemberLocks(lockPruneInterval),
		metrics:  metrics,
		now:      time.Now,
	}
}

func lockedError(wait time.Duration) error {
	return fmt.Errorf("%w. Try again in %s", ErrAccountLocked, humanizeWait(wait))
}

// Login checks the password, then replaces every session of the member with a new one
// Vérifie le mot de passe puis remplace toutes les sessions du membre
func (s *AuthService) Login(ctx context.Context, email, password, ipHash, uaHash string) (*domain.User, *auth.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	now := s.now()
	if wait := user.LockedFor(now); wait > 0 {
		s.metrics.RecordAccountLockout()
		return nil, nil, lockedError(wait)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, s.recordFailure(ctx, user, now)
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	pair, err := s.rotate(ctx, user, ipHash, uaHash, func(store ports.RefreshTokenStore) error {
		return store.RevokeAllForUser(ctx, user.ID)
	}, true)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// recordFailure counts a bad password and locks the account at the threshold
func (s *AuthService) recordFailure(ctx context.Context, user *domain.User, now time.Time) error {
	if user.FailedLoginAttempts+1 >= s.policy.MaxFailedAttempts {
		if err := s.security.LockAccount(ctx, user.ID, now.Add(s.policy.LockoutDuration)); err != nil {
			slog.Error("failed to lock account", "user_id", user.ID, "err", err)
		}
		s.metrics.RecordAccountLockout()
		slog.Warn("account locked", "user_id", user.ID, "duration", s.policy.LockoutDuration)
		return lockedError(s.policy.LockoutDuration)
	}

	if err := s.security.IncrementFailedAttempts(ctx, user.ID); err != nil {
		slog.Error("failed to record failed login attempt", "user_id", user.ID, "err", err)
	}
	return ErrInvalidCredentials
}

// RefreshToken exchanges a bound refresh token for a new pair / Échange un refresh token lié contre une nouvelle paire
func (s *AuthService) RefreshToken(ctx context.Context, raw, ipHash, uaHash string) (*auth.TokenPair, error) {
	record, err := s.refresh.Find(ctx, raw)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	switch {
	case record.IsRevoked:
		return nil, ErrRevokedRefreshToken
	case !record.Usable(s.now()):
		return nil, ErrExpiredRefreshToken
	case record.IPHash != ipHash || record.UAHash != uaHash:
		slog.Warn("refresh token binding mismatch",
			"user_id", record.UserID,
			"ip_match", record.IPHash == ipHash,
			"ua_match", record.UAHash == uaHash,
		)
		return nil, ErrTokenBinding
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	return s.rotate(ctx, user, ipHash, uaHash, func(store ports.RefreshTokenStore) error {
		revoked, err := store.Revoke(ctx, raw)
		if err == nil && !revoked {
			// another refresh rotated this token first
			return ErrRevokedRefreshToken
		}
		return err
	}, false)
}

// rotate revokes, issues and stores in one transaction / Révoque, émet et enregistre dans une transaction
func (s *AuthService) rotate(
	ctx context.Context,
	user *domain.User,
	ipHash, uaHash string,
	revoke func(ports.RefreshTokenStore) error,
	resetFailures bool,
) (*auth.TokenPair, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		slog.Error("failed to start token rotation", "user_id", user.ID, "err", err)
		return nil, errInternal
	}
	defer tx.Rollback()

	store := s.refresh.WithTx(tx)
	if err := revoke(store); err != nil {
		if errors.Is(err, ErrRevokedRefreshToken) {
			return nil, err
		}
		slog.Error("failed to revoke refresh tokens", "user_id", user.ID, "err", err)
		return nil, errInternal
	}

	pair, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		slog.Error("failed to issue token pair", "user_id", user.ID, "err", err)
		return nil, errInternal
	}

	if err := store.Save(ctx, &domain.RefreshToken{
		Token:     pair.RefreshToken,
		UserID:    user.ID,
		IssueAt:   s.now(),
		ExpiresAt: pair.RefreshExpiresAt,
		IPHash:    ipHash,
		UAHash:    uaHash,
	}); err != nil {
		slog.Error("failed to save refresh token", "user_id", user.ID, "err", err)
		return nil, errInternal
	}

	if resetFailures && user.FailedLoginAttempts > 0 {
		if err := s.security.WithTx(tx).ResetFailedAttempts(ctx, user.ID); err != nil {
			slog.Error("failed to reset failed login attempts", "user_id", user.ID, "err", err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit token rotation", "user_id", user.ID, "err", err)
		return nil, errInternal
	}
	return pair, nil
}

// RevokeAllTokens ends every session of a member / Termine toutes les sessions d'un membre
func (s *AuthService) RevokeAllTokens(ctx context.Context, userID int64) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := s.refresh.RevokeAllForUser(ctx, userID); err != nil {
		slog.Error("failed to revoke tokens", "user_id", userID, "err", err)
		return errInternal
	}
	slog.Info("all refresh tokens revoked", "user_id", userID)
	return nil
}
