package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

var _ ports.UserRepository = (*userRepository)(nil)

// userRepository implements UserRepository / Implémente UserRepository
type userRepository struct {
	store
}

// NewUserRepository creates user repository / Crée le repository utilisateur
func NewUserRepository(conn ports.DBTX, dialect Dialect) ports.UserRepository {
	return &userRepository{store: newStore(conn, dialect)}
}

// WithTx returns repository with transaction / Retourne le repository avec transaction
func (r *userRepository) WithTx(dbtx ports.DBTX) ports.AccountSecurityRepository {
	return &userRepository{store: store{db: dbtx, dialect: r.dialect}}
}

const userColumns = `id, email, password, role, display_name, bio, avatar_url, birthday,
	failed_login_attempts, locked_until, created_at, updated_at, deleted_at`

type userRow struct {
	ID                  int64      `db:"id"`
	Email               string     `db:"email"`
	Password            string     `db:"password"`
	Role                string     `db:"role"`
	DisplayName         string     `db:"display_name"`
	Bio                 string     `db:"bio"`
	AvatarURL           string     `db:"avatar_url"`
	Birthday            *time.Time `db:"birthday"`
	FailedLoginAttempts int        `db:"failed_login_attempts"`
	LockedUntil         *time.Time `db:"locked_until"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	DeletedAt           *time.Time `db:"deleted_at"`
}

func (row userRow) toDomain() *domain.User {
	return &domain.User{
		BaseModel: domain.BaseModel{
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
			DeletedAt: row.DeletedAt,
		},
		ID:                  row.ID,
		Email:               row.Email,
		Password:            row.Password,
		Role:                domain.UserRole(row.Role),
		DisplayName:         row.DisplayName,
		Bio:                 row.Bio,
		AvatarURL:           row.AvatarURL,
		Birthday:            row.Birthday,
		FailedLoginAttempts: row.FailedLoginAttempts,
		LockedUntil:         row.LockedUntil,
	}
}

// Create inserts new user, the first one becomes admin / Insère un utilisateur, le premier devient admin
func (r *userRepository) Create(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	var id int64
	err := r.inTx(ctx, func(tx store) error {
		count, err := tx.count(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`)
		if err != nil {
			return err
		}

		role := domain.RoleUser
		if count == 0 {
			role = domain.RoleAdmin
		}

		ts := now()
		id, err = tx.insert(ctx,
			`INSERT INTO users (email, password, role, display_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			email, password, string(role), displayName, ts, ts,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves user by ID / Récupère l'utilisateur par ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	if err := r.get(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// GetByEmail retrieves user by email / Récupère l'utilisateur par email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	if err := r.get(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email = ?`, email); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// List retrieves paginated users / Récupère les utilisateurs paginés
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, int, error) {
	total, err := r.count(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, 0, err
	}

	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	if err := r.selectAll(ctx, &rows, query, limit, offset); err != nil {
		return nil, 0, err
	}

	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, total, nil
}

// Delete removes user and the reactions on their content, their claims reopen.
// Supprime l'utilisateur et les réactions sur son contenu, ses prises en charge sont rouvertes.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx store) error {
		for _, target := range []struct {
			kind  domain.TargetType
			table string
		}{
			{domain.TargetPost, "posts"},
			{domain.TargetSharePost, "share_posts"},
		} {
			sub := `target_type = ? AND target_id IN (SELECT id FROM ` + target.table + ` WHERE author_id = ?)`
			if _, err := tx.exec(ctx, `DELETE FROM reactions WHERE `+sub, string(target.kind), id); err != nil {
				return err
			}
			if _, err := tx.exec(ctx, `DELETE FROM bookmarks WHERE `+sub, string(target.kind), id); err != nil {
				return err
			}
		}
		// Claims go back to the family / Les prises en charge redeviennent ouvertes
		if _, err := tx.exec(ctx,
			`UPDATE help_requests SET status = ?, helper_id = NULL, updated_at = ? WHERE helper_id = ? AND status = ?`,
			string(domain.HelpOpen), now(), id, string(domain.HelpClaimed),
		); err != nil {
			return err
		}
		return tx.execOne(ctx, `DELETE FROM users WHERE id = ?`, id)
	})
}

// UpdateProfile applies a partial profile change / Applique une modification partielle du profil
func (r *userRepository) UpdateProfile(ctx context.Context, userID int64, update domain.ProfileUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{now()}

	if update.DisplayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *update.DisplayName)
	}
	if update.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *update.Bio)
	}
	if update.AvatarURL != nil {
		sets = append(sets, "avatar_url = ?")
		args = append(args, *update.AvatarURL)
	}
	if update.ClearBirthday {
		sets = append(sets, "birthday = NULL")
	} else if update.Birthday != nil {
		sets = append(sets, "birthday = ?")
		args = append(args, update.Birthday.UTC())
	}

	args = append(args, userID)
	return r.execOne(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted_at IS NULL`, args...)
}

// ProfileStats counts a member's content / Compte le contenu d'un membre
func (r *userRepository) ProfileStats(ctx context.Context, userID int64) (domain.ProfileStats, error) {
	var row struct {
		Posts            int `db:"posts"`
		Goals            int `db:"goals"`
		CompletedGoals   int `db:"completed_goals"`
		OpenHelpRequests int `db:"open_help_requests"`
		SharePosts       int `db:"share_posts"`
	}
	query := `SELECT
		(SELECT COUNT(*) FROM posts WHERE author_id = ?) AS posts,
		(SELECT COUNT(*) FROM goals WHERE owner_id = ?) AS goals,
		(SELECT COUNT(*) FROM goals WHERE owner_id = ? AND completed = ?) AS completed_goals,
		(SELECT COUNT(*) FROM help_requests WHERE requester_id = ? AND status IN (?, ?)) AS open_help_requests,
		(SELECT COUNT(*) FROM share_posts WHERE author_id = ?) AS share_posts`
	err := r.get(ctx, &row, query,
		userID, userID, userID, true,
		userID, string(domain.HelpOpen), string(domain.HelpClaimed),
		userID,
	)
	if err != nil {
		return domain.ProfileStats{}, err
	}
	return domain.ProfileStats{
		Posts:            row.Posts,
		Goals:            row.Goals,
		CompletedGoals:   row.CompletedGoals,
		OpenHelpRequests: row.OpenHelpRequests,
		SharePosts:       row.SharePosts,
	}, nil
}

// IncrementFailedAttempts increments failed login attempts / Incrémente les tentatives échouées
func (r *userRepository) IncrementFailedAttempts(ctx context.Context, userID int64) error {
	_, err := r.exec(ctx, `UPDATE users SET failed_login_attempts = failed_login_attempts + 1 WHERE id = ?`, userID)
	return err
}

// ResetFailedAttempts resets failed login attempts / Réinitialise les tentatives échouées
func (r *userRepository) ResetFailedAttempts(ctx context.Context, userID int64) error {
	_, err := r.exec(ctx, `UPDATE users SET failed_login_attempts = 0, locked_until = NULL WHERE id = ?`, userID)
	return err
}

// LockAccount locks user account / Verrouille le compte utilisateur
func (r *userRepository) LockAccount(ctx context.Context, userID int64, until time.Time) error {
	_, err := r.exec(ctx, `UPDATE users SET locked_until = ? WHERE id = ?`, until.UTC(), userID)
	return err
}

// UpdateRole changes user role / Change le rôle utilisateur
func (r *userRepository) UpdateRole(ctx context.Context, userID int64, role string) error {
	return r.execOne(ctx, `UPDATE users SET role = ?, updated_at = ? WHERE id = ?`, role, now(), userID)
}

// CountUsers returns total user count / Retourne le nombre total d'utilisateurs
func (r *userRepository) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`)
}

// CountByRole returns user counts per role / Retourne le nombre d'utilisateurs par rôle
func (r *userRepository) CountByRole(ctx context.Context) (map[domain.UserRole]int, error) {
	var rows []struct {
		Role  string `db:"role"`
		Total int    `db:"total"`
	}
	if err := r.selectAll(ctx, &rows, `SELECT role, COUNT(*) AS total FROM users WHERE deleted_at IS NULL GROUP BY role`); err != nil {
		return nil, err
	}

	counts := map[domain.UserRole]int{
		domain.RoleUser:      0,
		domain.RoleModerator: 0,
		domain.RoleAdmin:     0,
	}
	for _, row := range rows {
		counts[domain.UserRole(row.Role)] = row.Total
	}
	return counts, nil
}

// GetPermissionsForRole retrieves permissions for role / Récupère les permissions du rôle
func (r *userRepository) GetPermissionsForRole(ctx context.Context, role string) ([]domain.Permission, error) {
	var perms []string
	if err := r.selectAll(ctx, &perms, `SELECT permission FROM role_permissions WHERE role = ? ORDER BY permission`, role); err != nil {
		return nil, err
	}

	permissions := make([]domain.Permission, 0, len(perms))
	for _, p := range perms {
		permissions = append(permissions, domain.Permission(p))
	}
	return permissions, nil
}

// UserHasPermission checks if user has permission / Vérifie si l'utilisateur a la permission
func (r *userRepository) UserHasPermission(ctx context.Context, userID int64, permission domain.Permission) (bool, error) {
	query := `SELECT COUNT(*)
		FROM users u
		JOIN role_permissions rp ON u.role = rp.role
		WHERE u.id = ? AND rp.permission = ? AND u.deleted_at IS NULL`
	n, err := r.count(ctx, query, userID, permission.String())
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddPermissionToRole assigns permission to role / Assigne la permission au rôle
func (r *userRepository) AddPermissionToRole(ctx context.Context, role string, permission domain.Permission) error {
	_, err := r.exec(ctx, `INSERT INTO role_permissions (role, permission) VALUES (?, ?)`, role, permission.String())
	return err
}

// RemovePermissionFromRole removes permission from role / Retire la permission du rôle
func (r *userRepository) RemovePermissionFromRole(ctx context.Context, role string, permission domain.Permission) error {
	_, err := r.exec(ctx, `DELETE FROM role_permissions WHERE role = ? AND permission = ?`, role, permission.String())
	return err
}
