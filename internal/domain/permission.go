package domain

import "slices"

// Permission represents granular permission (resource:action pattern) / Permission granulaire (pattern resource:action)
type Permission string

// Predefined permissions / Permissions prédéfinies
const (
	PermissionUsersRead       Permission = "users:read"
	PermissionUsersWrite      Permission = "users:write"
	PermissionUsersDelete     Permission = "users:delete"
	PermissionUsersList       Permission = "users:list"
	PermissionRolesRead       Permission = "roles:read"
	PermissionRolesWrite      Permission = "roles:write"
	PermissionStatsRead       Permission = "stats:read"
	PermissionSystemAdmin     Permission = "system:admin"
	PermissionContentModerate Permission = "content:moderate"
)

// AllPermissions returns all defined permissions / Retourne toutes les permissions définies
func AllPermissions() []Permission {
	return []Permission{
		PermissionUsersRead,
		PermissionUsersWrite,
		PermissionUsersDelete,
		PermissionUsersList,
		PermissionRolesRead,
		PermissionRolesWrite,
		PermissionStatsRead,
		PermissionSystemAdmin,
		PermissionContentModerate,
	}
}

// String returns permission as string / Retourne la permission en string
func (p Permission) String() string {
	return string(p)
}

// IsValid reports whether p is a known permission / Indique si la permission est connue
func (p Permission) IsValid() bool {
	return slices.Contains(AllPermissions(), p)
}

// DefaultPermissionsForRole returns default permissions for role / Retourne les permissions par défaut du rôle
func DefaultPermissionsForRole(role UserRole) []Permission {
	switch role {
	case RoleModerator:
		return []Permission{
			PermissionUsersRead,
			PermissionUsersList,
			PermissionStatsRead,
			PermissionContentModerate,
		}
	case RoleAdmin:
		return AllPermissions()
	default:
		return []Permission{}
	}
}

// Actor identifies who performs an operation / Identifie qui exécute une opération
type Actor struct {
	ID   int64
	Role UserRole
}

// Owns reports whether the actor authored a record / Indique si l'acteur est l'auteur d'un enregistrement
func (a Actor) Owns(ownerID int64) bool {
	return a.ID != 0 && a.ID == ownerID
}
