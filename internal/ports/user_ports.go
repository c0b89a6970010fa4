package ports

import (
	"context"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
)

// UserReader looks members up. Soft-deleted members are never returned.
// Recherche les membres, les membres supprimés ne sont jamais retournés.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByEmail expects a normalized address / Attend une adresse normalisée
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// List pages members by id and returns the total / Pagine les membres par id
	List(ctx context.Context, offset, limit int) ([]*domain.User, int, error)
	CountUsers(ctx context.Context) (int, error)
	CountByRole(ctx context.Context) (map[domain.UserRole]int, error)
}

// UserWriter creates and removes accounts / Crée et supprime les comptes
type UserWriter interface {
	// Create stores a hashed password, the first account of the family becomes admin.
	Create(ctx context.Context, email, passwordHash, displayName string) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// ProfileRepository edits the public side of an account / Modifie la partie publique d'un compte
type ProfileRepository interface {
	// UpdateProfile writes only the fields set in update
	UpdateProfile(ctx context.Context, userID int64, update domain.ProfileUpdate) error
	ProfileStats(ctx context.Context, userID int64) (domain.ProfileStats, error)
}

// AccountSecurityRepository tracks failed logins and lockouts.
// Suit les échecs de connexion et les verrouillages.
type AccountSecurityRepository interface {
	IncrementFailedAttempts(ctx context.Context, userID int64) error
	ResetFailedAttempts(ctx context.Context, userID int64) error
	LockAccount(ctx context.Context, userID int64, until time.Time) error
	WithTx(dbtx DBTX) AccountSecurityRepository
}

// RoleRepository changes a member's role / Change le rôle d'un membre
type RoleRepository interface {
	UpdateRole(ctx context.Context, userID int64, role string) error
}

// PermissionChecker answers permission checks against the role table.
// Répond aux vérifications de permission via la table des rôles.
type PermissionChecker interface {
	UserHasPermission(ctx context.Context, userID int64, permission domain.Permission) (bool, error)
}

// PermissionRepository edits the role table at runtime / Modifie la table des rôles
type PermissionRepository interface {
	PermissionChecker
	GetPermissionsForRole(ctx context.Context, role string) ([]domain.Permission, error)
	// AddPermissionToRole fails with ErrDuplicate when already granted
	AddPermissionToRole(ctx context.Context, role string, permission domain.Permission) error
	RemovePermissionFromRole(ctx context.Context, role string, permission domain.Permission) error
}

// UserRepository is everything the account store offers / Tout ce que le stockage des comptes offre
type UserRepository interface {
	UserReader
	UserWriter
	ProfileRepository
	AccountSecurityRepository
	RoleRepository
	PermissionRepository
}
