package service

import (
	"context"
	"log/slog"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

// Authorizer applies the content edit rule / Applique la règle d'édition du contenu
type Authorizer struct {
	perms ports.PermissionChecker
}

// NewAuthorizer creates an authorizer / Crée un autorisateur
func NewAuthorizer(perms ports.PermissionChecker) *Authorizer {
	return &Authorizer{perms: perms}
}

// Has checks a permission for the actor / Vérifie une permission de l'acteur
func (a *Authorizer) Has(ctx context.Context, actor domain.Actor, perm domain.Permission) (bool, error) {
	if actor.ID == 0 {
		return false, nil
	}
	ok, err := a.perms.UserHasPermission(ctx, actor.ID, perm)
	if err != nil {
		slog.Error("failed to check permission", "user_id", actor.ID, "permission", perm, "err", err)
		return false, errInternal
	}
	return ok, nil
}

// CanModify allows the owner or a moderator / Autorise l'auteur ou un modérateur
func (a *Authorizer) CanModify(ctx context.Context, actor domain.Actor, ownerID int64) error {
	if actor.Owns(ownerID) {
		return nil
	}
	return a.Require(ctx, actor, domain.PermissionContentModerate)
}

// Require fails with ErrForbidden without the permission / Échoue avec ErrForbidden sans la permission
func (a *Authorizer) Require(ctx context.Context, actor domain.Actor, perm domain.Permission) error {
	ok, err := a.Has(ctx, actor, perm)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
