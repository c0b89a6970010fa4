package web

import (
	"log/slog"
	"net/http"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/dto"
)

// ListUsers returns paginated list of users with emails / Retourne la liste paginée des utilisateurs avec emails
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)

	users, total, err := h.container.UserSvc.ListUsers(r.Context(), page.Offset, page.Limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	// admins see addresses / les admins voient les adresses
	jsonResponse(w, dto.NewList(users, dto.UserLoginToDTO, page, total))
}

// DeleteUser deletes a user by ID / Supprime un utilisateur par ID
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.container.UserSvc.DeleteUser(r.Context(), userID); err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, map[string]string{"message": "User deleted successfully"})
}

// UpdateUserRole updates user role / Met à jour le rôle d'un utilisateur
//
// Body: {"role": "moderator"}
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.RoleDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	role := domain.UserRole(req.Role)
	if !role.IsValid() {
		validationResponse(w, &domain.ValidationError{Fields: map[string]string{"role": "must be one of: user, moderator, admin"}})
		return
	}

	if err := h.container.UserSvc.UpdateUserRole(r.Context(), userID, role); err != nil {
		respondError(w, r, err)
		return
	}

	// new permissions, new CSRF token / nouvelles permissions, nouveau token CSRF
	if err := h.rotateCSRF(w); err != nil {
		slog.Error("rotate csrf after role change", "user_id", userID, "err", err)
	}
	jsonResponse(w, map[string]string{"message": "User role updated successfully"})
}

// GetUserStats returns family statistics / Retourne les statistiques de la famille
func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.container.UserSvc.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	roles := map[string]int{
		string(domain.RoleUser):      0,
		string(domain.RoleModerator): 0,
		string(domain.RoleAdmin):     0,
	}
	for role, n := range stats.UsersByRole {
		roles[string(role)] = n
	}

	jsonResponse(w, dto.StatsDTOResponse{
		TotalUsers: stats.Users,
		Roles:      roles,
		Content:    stats.Content,
	})
}

// ListRolePermissions returns the permissions of a role / Retourne les permissions d'un rôle
func (h *Handler) ListRolePermissions(w http.ResponseWriter, r *http.Request) {
	h.writeRolePermissions(w, r, domain.UserRole(r.PathValue("role")))
}

// GrantRolePermission adds a permission to a role / Ajoute une permission à un rôle
func (h *Handler) GrantRolePermission(w http.ResponseWriter, r *http.Request) {
	role := domain.UserRole(r.PathValue("role"))
	perm := domain.Permission(r.PathValue("permission"))

	if err := h.container.UserSvc.GrantPermission(r.Context(), role, perm); err != nil {
		respondError(w, r, err)
		return
	}
	h.writeRolePermissions(w, r, role)
}

// RevokeRolePermission removes a permission from a role / Retire une permission d'un rôle
func (h *Handler) RevokeRolePermission(w http.ResponseWriter, r *http.Request) {
	role := domain.UserRole(r.PathValue("role"))
	perm := domain.Permission(r.PathValue("permission"))

	if err := h.container.UserSvc.RevokePermission(r.Context(), role, perm); err != nil {
		respondError(w, r, err)
		return
	}
	h.writeRolePermissions(w, r, role)
}

func (h *Handler) writeRolePermissions(w http.ResponseWriter, r *http.Request, role domain.UserRole) {
	perms, err := h.container.UserSvc.RolePermissions(r.Context(), role)
	if err != nil {
		respondError(w, r, err)
		return
	}

	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.String())
	}
	jsonResponse(w, dto.RolePermissionsDTOResponse{Role: string(role), Permissions: names})
}
