package web

import (
	"net/http"
	"time"

	"github.com/Olprog59/go-familyhub/internal/app"
	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestTimeout = 30 * time.Second

// NewMux creates and configures the HTTP router / Crée et configure le routeur HTTP
func NewMux(h *Handler, conf *config.Config, container *app.Container) http.Handler {
	mux := http.NewServeMux()
	mw := NewMiddleware(conf, container.Metrics, container.UserRepo, container.Tokens)

	// Health check endpoints (no auth, no rate limiting for load balancers)
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /readiness", h.ReadinessCheck)

	// Metrics expose internals, stats:read only / Les métriques exposent l'interne, stats:read seulement
	metricsHandler := promhttp.HandlerFor(container.Registry, promhttp.HandlerOpts{})
	mux.Handle("GET /metrics", chain(metricsHandler.ServeHTTP, mw.Auth, mw.RequirePermission(domain.PermissionStatsRead)))

	mux.Handle("POST /api/login", chain(h.Login, mw.RateLimitStrict))
	mux.Handle("POST /api/register", chain(h.Register, mw.RateLimitStrict))
	mux.Handle("POST /api/refresh", chain(h.RefreshToken, mw.Auth, mw.CSRF, mw.RateLimitStrict))

	// Member endpoints: auth + CSRF + per-user limit / Endpoints membres : auth + CSRF + limite par utilisateur
	member := func(f http.HandlerFunc) http.Handler {
		return chain(f, mw.Auth, mw.CSRF, mw.RateLimitByUser)
	}

	mux.Handle("GET /api/me", member(h.Me))
	mux.Handle("PATCH /api/me", member(h.UpdateMe))
	mux.Handle("POST /api/logout", member(h.Logout))
	mux.Handle("GET /api/me/bookmarks", member(h.MyBookmarks))
	mux.Handle("GET /api/users", member(h.ListFamily))
	mux.Handle("GET /api/users/{id}", member(h.GetProfile))

	mux.Handle("GET /api/posts", member(h.ListPosts))
	mux.Handle("POST /api/posts", member(h.CreatePost))
	mux.Handle("GET /api/posts/{id}", member(h.GetPost))
	mux.Handle("PATCH /api/posts/{id}", member(h.UpdatePost))
	mux.Handle("DELETE /api/posts/{id}", member(h.DeletePost))
	mux.Handle("PUT /api/posts/{id}/reactions/{kind}", member(h.React(domain.TargetPost)))
	mux.Handle("DELETE /api/posts/{id}/reactions/{kind}", member(h.React(domain.TargetPost)))
	mux.Handle("PUT /api/posts/{id}/bookmark", member(h.Bookmark(domain.TargetPost)))
	mux.Handle("DELETE /api/posts/{id}/bookmark", member(h.Bookmark(domain.TargetPost)))
	mux.Handle("GET /api/posts/{id}/comments", member(h.ListComments))
	mux.Handle("POST /api/posts/{id}/comments", member(h.AddComment))
	mux.Handle("PATCH /api/comments/{id}", member(h.UpdateComment))
	mux.Handle("DELETE /api/comments/{id}", member(h.DeleteComment))

	mux.Handle("GET /api/events", member(h.ListEvents))
	mux.Handle("GET /api/events/upcoming", member(h.UpcomingEvents))
	mux.Handle("POST /api/events", member(h.CreateEvent))
	mux.Handle("GET /api/events/{id}", member(h.GetEvent))
	mux.Handle("PATCH /api/events/{id}", member(h.UpdateEvent))
	mux.Handle("DELETE /api/events/{id}", member(h.DeleteEvent))

	mux.Handle("GET /api/goals", member(h.ListGoals))
	mux.Handle("POST /api/goals", member(h.CreateGoal))
	mux.Handle("GET /api/goals/{id}", member(h.GetGoal))
	mux.Handle("PATCH /api/goals/{id}", member(h.UpdateGoal))
	mux.Handle("DELETE /api/goals/{id}", member(h.DeleteGoal))
	mux.Handle("POST /api/goals/{id}/complete", member(h.CompleteGoal))
	mux.Handle("POST /api/goals/{id}/reopen", member(h.ReopenGoal))
	mux.Handle("POST /api/goals/{id}/progress", member(h.AddGoalProgress))

	mux.Handle("GET /api/help-requests", member(h.ListHelpRequests))
	mux.Handle("POST /api/help-requests", member(h.CreateHelpRequest))
	mux.Handle("GET /api/help-requests/{id}", member(h.GetHelpRequest))
	mux.Handle("PATCH /api/help-requests/{id}", member(h.UpdateHelpRequest))
	mux.Handle("DELETE /api/help-requests/{id}", member(h.DeleteHelpRequest))
	for _, step := range []string{"claim", "unclaim", "resolve", "reopen"} {
		mux.Handle("POST /api/help-requests/{id}/"+step, member(h.HelpTransition(step)))
	}

	mux.Handle("GET /api/share-posts", member(h.ListSharePosts))
	mux.Handle("POST /api/share-posts", member(h.CreateSharePost))
	mux.Handle("GET /api/share-posts/{id}", member(h.GetSharePost))
	mux.Handle("PATCH /api/share-posts/{id}", member(h.UpdateSharePost))
	mux.Handle("DELETE /api/share-posts/{id}", member(h.DeleteSharePost))
	mux.Handle("GET /api/share-posts/{id}/qrcode", member(h.SharePostQRCode))
	mux.Handle("PUT /api/share-posts/{id}/reactions/{kind}", member(h.React(domain.TargetSharePost)))
	mux.Handle("DELETE /api/share-posts/{id}/reactions/{kind}", member(h.React(domain.TargetSharePost)))
	mux.Handle("PUT /api/share-posts/{id}/bookmark", member(h.Bookmark(domain.TargetSharePost)))
	mux.Handle("DELETE /api/share-posts/{id}/bookmark", member(h.Bookmark(domain.TargetSharePost)))

	mux.Handle("POST /api/media", chain(h.UploadMedia, mw.Auth, mw.CSRF, mw.RateLimitUpload))
	mux.HandleFunc("GET /media/{key}", h.ServeMedia)

	// No custom header on a websocket upgrade, the hub checks Origin / Pas d'en-tête possible, le hub vérifie l'Origin
	mux.Handle("GET /api/ws", chain(h.Stream, mw.Auth, mw.RateLimitByUser))

	// Admin endpoints - using granular permissions
	mux.Handle("GET /api/admin/users", chain(h.ListUsers, mw.Auth, mw.CSRF, mw.RequirePermission(domain.PermissionUsersList)))
	mux.Handle("DELETE /api/admin/users/{id}", chain(h.DeleteUser, mw.Auth, mw.CSRF, mw.RequirePermission(domain.PermissionUsersDelete)))
	mux.Handle("PATCH /api/admin/users/{id}/role", chain(h.UpdateUserRole, mw.Auth, mw.CSRF, mw.RequirePermission(domain.PermissionRolesWrite)))
	mux.Handle("GET /api/admin/roles/{role}/permissions", chain(h.ListRolePermissions, mw.Auth, mw.CSRF, mw.RequirePermission(domain.PermissionRolesRead)))
	mux.Handle("PUT /api/admin/roles/{role}/permissions/{permission}", chain(h.GrantRolePermission, mw.Auth, mw.CSRF, mw.RequirePermission(domain.PermissionRolesWrite)))
	mux.Handle("DELETE /api/admin/roles/{role}/permissions/{permission}", chain(h.RevokeRolePermission, mw.Auth, mw.CSRF, mw.RequirePermission(domain.PermissionRolesWrite)))

	mux.Handle("GET /api/moderator/stats", chain(h.GetUserStats, mw.Auth, mw.CSRF, mw.RequirePermission(domain.PermissionStatsRead)))

	// Global middlewares - applied in reverse order / Middlewares globaux appliqués en ordre inverse
	var handler http.Handler = mux
	handler = mw.Metrics(handler)
	handler = mw.RateLimit(handler)
	handler = mw.SecurityHeaders(handler)
	handler = mw.Cors(handler)
	handler = Timeout(requestTimeout)(handler)
	handler = Logging(handler)
	handler = RequestID(handler) // RequestID first - generates ID for all middleware

	return handler
}

// chain applies middleware to HTTP handler / Applique les middlewares au gestionnaire HTTP
func chain(f http.HandlerFunc, middlewares ...func(http.Handler) http.Handler) http.Handler {
	var handler http.Handler = f

	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}
