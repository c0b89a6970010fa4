package mocks

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/repository"
)

var _ ports.UserRepository = (*MockUserRepository)(nil)

// MockUserRepository keeps members and the role table in memory.
// Reads hand out copies like the SQL store, Users holds the live records.
type MockUserRepository struct {
	mu sync.Mutex

	Users       map[int64]*domain.User
	Permissions map[domain.UserRole][]domain.Permission
	Stats       map[int64]domain.ProfileStats
	lastID      int64

	failures map[string]error
	calls    map[string]int
}

// NewMockUserRepository seeds the default role table / Initialise la table des rôles par défaut
func NewMockUserRepository() *MockUserRepository {
	perms := make(map[domain.UserRole][]domain.Permission)
	for _, role := range []domain.UserRole{domain.RoleUser, domain.RoleModerator, domain.RoleAdmin} {
		perms[role] = domain.DefaultPermissionsForRole(role)
	}
	return &MockUserRepository{
		Users:       make(map[int64]*domain.User),
		Permissions: perms,
		Stats:       make(map[int64]domain.ProfileStats),
		failures:    make(map[string]error),
		calls:       make(map[string]int),
	}
}

// FailOn makes method return err until cleared with a nil err
func (m *MockUserRepository) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, method)
		return
	}
	m.failures[method] = err
}

// Calls counts invocations of method
func (m *MockUserRepository) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// enter locks the mock and records the call, the caller must unlock.
func (m *MockUserRepository) enter(method string) error {
	m.mu.Lock()
	m.calls[method]++
	return m.failures[method]
}

// AddUser stores a member as is, assigning an id and role when missing
func (m *MockUserRepository) AddUser(user *domain.User) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(user)
}

func (m *MockUserRepository) insert(user *domain.User) *domain.User {
	if user.ID == 0 {
		m.lastID++
		user.ID = m.lastID
	}
	m.lastID = max(m.lastID, user.ID)
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	m.Users[user.ID] = user
	return user
}

// live returns the stored record or ErrNoRecord
func (m *MockUserRepository) live(id int64) (*domain.User, error) {
	if u, ok := m.Users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNoRecord
}

func (m *MockUserRepository) Create(_ context.Context, email, passwordHash, displayName string) (*domain.User, error) {
	defer m.mu.Unlock()
	if err := m.enter("Create"); err != nil {
		return nil, err
	}

	for _, u := range m.Users {
		if strings.EqualFold(u.Email, email) {
			return nil, repository.ErrDuplicate
		}
	}

	role := domain.RoleUser
	if len(m.Users) == 0 {
		role = domain.RoleAdmin
	}
	now := time.Now().UTC()
	created := m.insert(&domain.User{
		BaseModel:   domain.BaseModel{CreatedAt: now, UpdatedAt: now},
		Email:       email,
		Password:    passwordHash,
		DisplayName: displayName,
		Role:        role,
	})
	out := *created
	return &out, nil
}

func (m *MockUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	defer m.mu.Unlock()
	if err := m.enter("GetByID"); err != nil {
		return nil, err
	}
	u, err := m.live(id)
	if err != nil {
		return nil, err
	}
	out := *u
	return &out, nil
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	defer m.mu.Unlock()
	if err := m.enter("GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range m.Users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNoRecord
}

func (m *MockUserRepository) Delete(_ context.Context, id int64) error {
	defer m.mu.Unlock()
	if err := m.enter("Delete"); err != nil {
		return err
	}
	if _, err := m.live(id); err != nil {
		return err
	}
	delete(m.Users, id)
	return nil
}

func (m *MockUserRepository) UpdateRole(_ context.Context, userID int64, role string) error {
	defer m.mu.Unlock()
	if err := m.enter("UpdateRole"); err != nil {
		return err
	}
	u, err := m.live(userID)
	if err != nil {
		return err
	}
	u.Role = domain.UserRole(role)
	return nil
}

func (m *MockUserRepository) UpdateProfile(_ context.Context, userID int64, update domain.ProfileUpdate) error {
	defer m.mu.Unlock()
	if err := m.enter("UpdateProfile"); err != nil {
		return err
	}
	u, err := m.live(userID)
	if err != nil {
		return err
	}

	if update.DisplayName != nil {
		u.DisplayName = *update.DisplayName
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	switch {
	case update.ClearBirthday:
		u.Birthday = nil
	case update.Birthday != nil:
		u.Birthday = update.Birthday
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockUserRepository) ProfileStats(_ context.Context, userID int64) (domain.ProfileStats, error) {
	defer m.mu.Unlock()
	if err := m.enter("ProfileStats"); err != nil {
		return domain.ProfileStats{}, err
	}
	return m.Stats[userID], nil
}

// touch applies change to a stored member under the lock
func (m *MockUserRepository) touch(method string, userID int64, change func(*domain.User)) error {
	defer m.mu.Unlock()
	if err := m.enter(method); err != nil {
		return err
	}
	u, err := m.live(userID)
	if err != nil {
		return err
	}
	change(u)
	return nil
}

func (m *MockUserRepository) LockAccount(_ context.Context, userID int64, until time.Time) error {
	return m.touch("LockAccount", userID, func(u *domain.User) { u.LockedUntil = &until })
}

func (m *MockUserRepository) IncrementFailedAttempts(_ context.Context, userID int64) error {
	return m.touch("IncrementFailedAttempts", userID, func(u *domain.User) { u.FailedLoginAttempts++ })
}

func (m *MockUserRepository) ResetFailedAttempts(_ context.Context, userID int64) error {
	return m.touch("ResetFailedAttempts", userID, func(u *domain.User) {
		u.FailedLoginAttempts = 0
		u.LockedUntil = nil
	})
}

// List pages newest first like the SQL store / Pagine du plus récent au plus ancien
func (m *MockUserRepository) List(_ context.Context, offset, limit int) ([]*domain.User, int, error) {
	defer m.mu.Unlock()
	if err := m.enter("List"); err != nil {
		return nil, 0, err
	}

	all := make([]*domain.User, 0, len(m.Users))
	for _, u := range m.Users {
		out := *u
		all = append(all, &out)
	}
	slices.SortFunc(all, func(a, b *domain.User) int { return cmp.Compare(b.ID, a.ID) })

	total := len(all)
	if offset >= total {
		return []*domain.User{}, total, nil
	}
	return all[offset:min(offset+limit, total)], total, nil
}

func (m *MockUserRepository) CountUsers(context.Context) (int, error) {
	defer m.mu.Unlock()
	if err := m.enter("CountUsers"); err != nil {
		return 0, err
	}
	return len(m.Users), nil
}

func (m *MockUserRepository) CountByRole(context.Context) (map[domain.UserRole]int, error) {
	defer m.mu.Unlock()
	if err := m.enter("CountByRole"); err != nil {
		return nil, err
	}
	counts := make(map[domain.UserRole]int)
	for _, u := range m.Users {
		counts[u.Role]++
	}
	return counts, nil
}

func (m *MockUserRepository) GetPermissionsForRole(_ context.Context, role string) ([]domain.Permission, error) {
	defer m.mu.Unlock()
	if err := m.enter("GetPermissionsForRole"); err != nil {
		return nil, err
	}
	return slices.Clone(m.Permissions[domain.UserRole(role)]), nil
}

func (m *MockUserRepository) AddPermissionToRole(_ context.Context, role string, permission domain.Permission) error {
	defer m.mu.Unlock()
	if err := m.enter("AddPermissionToRole"); err != nil {
		return err
	}
	r := domain.UserRole(role)
	if slices.Contains(m.Permissions[r], permission) {
		return repository.ErrDuplicate
	}
	m.Permissions[r] = append(m.Permissions[r], permission)
	return nil
}

func (m *MockUserRepository) RemovePermissionFromRole(_ context.Context, role string, permission domain.Permission) error {
	defer m.mu.Unlock()
	if err := m.enter("RemovePermissionFromRole"); err != nil {
		return err
	}
	r := domain.UserRole(role)
	m.Permissions[r] = slices.DeleteFunc(m.Permissions[r], func(p domain.Permission) bool { return p == permission })
	return nil
}

// UserHasPermission is false for unknown members
func (m *MockUserRepository) UserHasPermission(_ context.Context, userID int64, permission domain.Permission) (bool, error) {
	defer m.mu.Unlock()
	if err := m.enter("UserHasPermission"); err != nil {
		return false, err
	}
	u, ok := m.Users[userID]
	if !ok {
		return false, nil
	}
	return slices.Contains(m.Permissions[u.Role], permission), nil
}

// WithTx returns the mock itself, there are no transactions in memory
func (m *MockUserRepository) WithTx(ports.DBTX) ports.AccountSecurityRepository {
	return m
}
