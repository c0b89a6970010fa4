package web

import (
	"context"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/service/auth"
)

// ContextKey namespaces request context values / Espace de noms des valeurs de contexte
type ContextKey string

const (
	// ClaimsContextKey holds the verified access token claims
	ClaimsContextKey = ContextKey("claims")
	userIDContextKey = ContextKey("user_id")
)

// withUser stores claims and user id / Stocke les claims et l'id utilisateur
func withUser(ctx context.Context, claims *auth.Claims, userID int64) context.Context {
	ctx = context.WithValue(ctx, ClaimsContextKey, claims)
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user id / Retourne l'id de l'utilisateur authentifié
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDContextKey).(int64)
	return id, ok && id > 0
}

// ActorFromContext builds the request actor / Construit l'acteur de la requête
// Permissions are checked against the database, the role claim is informative.
func ActorFromContext(ctx context.Context) domain.Actor {
	id, _ := UserIDFromContext(ctx)
	actor := domain.Actor{ID: id}
	if claims, ok := ctx.Value(ClaimsContextKey).(*auth.Claims); ok {
		actor.Role = domain.UserRole(claims.Role)
	}
	return actor
}
