package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Olprog59/go-familyhub/internal/cache"
	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const profileRecentPosts = 5

// Counter counts records of a collection / Compte les enregistrements d'une collection
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// UserMetricsRecorder records user metrics / Enregistre les métriques utilisateur
type UserMetricsRecorder interface {
	RecordCacheLookup(result string)
}

// UserDeps groups profile collaborators / Regroupe les dépendances du profil
type UserDeps struct {
	Posts     ports.PostRepository
	Goals     ports.GoalRepository
	Counters  map[string]Counter
	Cache     ports.Cache
	Publisher ports.ActivityPublisher
	Metrics   UserMetricsRecorder
}

// UserService handles user management operations / Gère les opérations de gestion des utilisateurs
type UserService struct {
	reader       ports.UserReader
	writer       ports.UserWriter
	profiles     ports.ProfileRepository
	roleRepo     ports.RoleRepository
	perms        ports.PermissionRepository
	access       *Authorizer
	refreshStore ports.RefreshTokenStore
	conf         *config.Config

	posts     ports.PostRepository
	goals     ports.GoalRepository
	counters  map[string]Counter
	cache     ports.Cache
	publisher ports.ActivityPublisher
	metrics   UserMetricsRecorder
}

// FamilyStats summarizes the family space / Résume l'espace familial
type FamilyStats struct {
	Users       int
	UsersByRole map[domain.UserRole]int
	Content     map[string]int
}

// NewUserService creates user management service instance / Crée une instance de service de gestion utilisateur
func NewUserService(
	repo ports.UserRepository,
	refreshStore ports.RefreshTokenStore,
	conf *config.Config,
	deps UserDeps,
) *UserService {
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	return &UserService{
		reader:       repo,
		writer:       repo,
		profiles:     repo,
		roleRepo:     repo,
		perms:        repo,
		access:       NewAuthorizer(repo),
		refreshStore: refreshStore,
		conf:         conf,
		posts:        deps.Posts,
		goals:        deps.Goals,
		counters:     deps.Counters,
		cache:        deps.Cache,
		publisher:    deps.Publisher,
		metrics:      deps.Metrics,
	}
}

// Register creates a new user account / Crée un nouveau compte utilisateur
func (s *UserService) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = domain.DefaultDisplayName(email)
	}
	if err := domain.ValidateRegistration(email, password, displayName); err != nil {
		return nil, err
	}

	// Hash password using bcrypt
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.conf.Security.BcryptCost)
	if err != nil {
		slog.Error("failed to hash password during registration", "err", err)
		return nil, errors.New("failed to process password")
	}

	createdUser, err := s.writer.Create(ctx, email, string(hashedPassword), displayName)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		slog.Error("failed to create user", "err", err)
		return nil, errors.New("failed to create user account")
	}

	return createdUser, nil
}

// GetUser retrieves a user by their ID / Récupère un utilisateur par son ID
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.reader.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers retrieves paginated users / Récupère les utilisateurs paginés
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) ([]*domain.User, int, error) {
	users, totalCount, err := s.reader.List(ctx, offset, limit)
	if err != nil {
		slog.Error("failed to list users", "err", err, "offset", offset, "limit", limit)
		return nil, 0, errors.New("failed to retrieve users")
	}
	return users, totalCount, nil
}

// GetProfile returns a member's profile page, cached / Retourne la page de profil d'un membre, en cache
func (s *UserService) GetProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	key := cache.ProfileKey(id)

	var cached domain.Profile
	switch err := s.cache.GetJSON(ctx, key, &cached); {
	case err == nil:
		s.recordLookup("hit")
		return &cached, nil
	case errors.Is(err, ports.ErrCacheMiss):
		s.recordLookup("miss")
	default:
		s.recordLookup("error")
		slog.Warn("profile cache lookup failed", "user_id", id, "err", err)
	}

	profile, err := s.loadProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, profile, s.conf.Cache.ProfileTTL); err != nil {
		slog.Warn("failed to cache profile", "user_id", id, "err", err)
	}
	return profile, nil
}

func (s *UserService) loadProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.profiles.ProfileStats(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to count profile content", "user_id", id)
	}

	profile := &domain.Profile{
		User:        publicUser(user),
		Stats:       stats,
		RecentPosts: []*domain.Post{},
		OpenGoals:   []*domain.Goal{},
	}

	// Recent posts carry no viewer state so the page can be shared by every viewer
	if s.posts != nil {
		posts, _, err := s.posts.List(ctx, domain.PostFilter{AuthorID: id, Page: domain.Page{Limit: profileRecentPosts}}, 0)
		if err != nil {
			return nil, storeError(err, "failed to load profile posts", "user_id", id)
		}
		profile.RecentPosts = posts
	}
	if s.goals != nil {
		goals, _, err := s.goals.List(ctx, domain.GoalFilter{OwnerID: id, Status: domain.GoalOpen, Page: domain.Page{Limit: domain.MaxPageSize}})
		if err != nil {
			return nil, storeError(err, "failed to load profile goals", "user_id", id)
		}
		profile.OpenGoals = goals
	}
	return profile, nil
}

// UpdateProfile changes profile fields, self or users:write only / Modifie le profil, soi-même ou users:write
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, id int64, update domain.ProfileUpdate) (*domain.User, error) {
	if !actor.Owns(id) {
		if err := s.access.Require(ctx, actor, domain.PermissionUsersWrite); err != nil {
			return nil, err
		}
	}

	update.Normalize()
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return s.GetUser(ctx, id)
	}

	if err := s.profiles.UpdateProfile(ctx, id, update); err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, ErrUserNotFound
		}
		return nil, storeError(err, "failed to update profile", "user_id", id)
	}

	s.InvalidateProfile(ctx, id)
	if s.publisher != nil {
		activity := domain.NewActivity(domain.ActivityProfileUpdated, actor.ID, id, nil)
		if err := s.publisher.Publish(ctx, activity); err != nil {
			slog.Warn("failed to publish activity", "type", activity.Type, "err", err)
		}
	}
	return s.GetUser(ctx, id)
}

// InvalidateProfile drops the cached profile page / Supprime la page de profil en cache
func (s *UserService) InvalidateProfile(ctx context.Context, userID int64) {
	if err := s.cache.Delete(ctx, cache.ProfileKey(userID)); err != nil {
		slog.Warn("failed to invalidate profile cache", "user_id", userID, "err", err)
	}
}

// DeleteUser permanently removes a user / Supprime définitivement un utilisateur
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	// Check if user exists
	_, err := s.reader.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	// Revoke all refresh tokens before deletion
	if err := s.refreshStore.RevokeAllForUser(ctx, userID); err != nil {
		slog.Error("failed to revoke tokens during user deletion", "user_id", userID, "err", err)
		// Continue with deletion even if token revocation fails
	}

	if err := s.writer.Delete(ctx, userID); err != nil {
		slog.Error("failed to delete user", "user_id", userID, "err", err)
		return errors.New("failed to delete user")
	}

	s.InvalidateProfile(ctx, userID)
	return nil
}

// UpdateUserRole changes a user's role / Change le rôle d'un utilisateur
func (s *UserService) UpdateUserRole(ctx context.Context, userID int64, newRole domain.UserRole) error {
	if !newRole.IsValid() {
		return domain.NewValidationError("role", "invalid role")
	}

	// Check if user exists
	_, err := s.reader.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.roleRepo.UpdateRole(ctx, userID, string(newRole)); err != nil {
		slog.Error("failed to update user role", "user_id", userID, "new_role", newRole, "err", err)
		return errors.New("failed to update user role")
	}

	s.InvalidateProfile(ctx, userID)
	return nil
}

// RolePermissions lists what a role may do / Liste les permissions d'un rôle
func (s *UserService) RolePermissions(ctx context.Context, role domain.UserRole) ([]domain.Permission, error) {
	if !role.IsValid() {
		return nil, domain.NewValidationError("role", "invalid role")
	}
	perms, err := s.perms.GetPermissionsForRole(ctx, string(role))
	if err != nil {
		return nil, storeError(err, "failed to list role permissions", "role", role)
	}
	return perms, nil
}

// GrantPermission adds a permission to a role, granting twice is a no-op.
// Ajoute une permission à un rôle.
func (s *UserService) GrantPermission(ctx context.Context, role domain.UserRole, perm domain.Permission) error {
	if err := checkRolePermission(role, perm); err != nil {
		return err
	}
	err := s.perms.AddPermissionToRole(ctx, string(role), perm)
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return storeError(err, "failed to grant permission", "role", role, "permission", perm)
	}
	slog.Info("permission granted", "role", role, "permission", perm)
	return nil
}

// RevokePermission removes a permission from a role / Retire une permission d'un rôle
// The admin role keeps every permission so the family cannot lock itself out.
func (s *UserService) RevokePermission(ctx context.Context, role domain.UserRole, perm domain.Permission) error {
	if err := checkRolePermission(role, perm); err != nil {
		return err
	}
	if role == domain.RoleAdmin {
		return domain.NewValidationError("role", "admin permissions cannot be revoked")
	}
	if err := s.perms.RemovePermissionFromRole(ctx, string(role), perm); err != nil {
		return storeError(err, "failed to revoke permission", "role", role, "permission", perm)
	}
	slog.Info("permission revoked", "role", role, "permission", perm)
	return nil
}

func checkRolePermission(role domain.UserRole, perm domain.Permission) error {
	fields := make(map[string]string)
	if !role.IsValid() {
		fields["role"] = "invalid role"
	}
	if !perm.IsValid() {
		fields["permission"] = "unknown permission"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Stats counts members by role and records per collection / Compte les membres par rôle et les enregistrements
func (s *UserService) Stats(ctx context.Context) (*FamilyStats, error) {
	total, err := s.reader.CountUsers(ctx)
	if err != nil {
		return nil, storeError(err, "failed to count users")
	}
	byRole, err := s.reader.CountByRole(ctx)
	if err != nil {
		return nil, storeError(err, "failed to count users by role")
	}

	stats := &FamilyStats{Users: total, UsersByRole: byRole, Content: make(map[string]int, len(s.counters))}
	for name, counter := range s.counters {
		n, err := counter.Count(ctx)
		if err != nil {
			return nil, storeError(err, "failed to count content", "collection", name)
		}
		stats.Content[name] = n
	}
	return stats, nil
}

func (s *UserService) recordLookup(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(result)
	}
}

// publicUser strips secrets before caching / Retire les secrets avant la mise en cache
func publicUser(u *domain.User) *domain.User {
	out := *u
	out.Password = ""
	out.Token = nil
	out.FailedLoginAttempts = 0
	out.LockedUntil = nil
	return &out
}
