package service

import (
	"errors"
	"log/slog"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/repository"
)

// Common service errors / Erreurs communes des services
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountLocked      = errors.New("account locked due to multiple failed login attempts")
	ErrInvalidTransition  = domain.ErrInvalidTransition

	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRevokedRefreshToken = errors.New("revoked refresh token")
	ErrExpiredRefreshToken = errors.New("expired refresh token")
	ErrTokenBinding        = errors.New("refresh token binding validation failed")

	errInternal = errors.New("internal server error")
)

// storeError hides driver errors behind service sentinels / Masque les erreurs du driver
func storeError(err error, msg string, attrs ...any) error {
	if errors.Is(err, repository.ErrNoRecord) {
		return ErrNotFound
	}
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return ErrNotFound
	}
	slog.Error(msg, append(attrs, "err", err)...)
	return errInternal
}
