package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/metrics"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/repository"
	"github.com/Olprog59/go-familyhub/internal/service/auth"
)

const bearerPrefix = "Bearer "

// memberStore is what the guards read about members / Ce que les gardes lisent des membres
type memberStore interface {
	ports.PermissionChecker
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Middleware holds what the request guards need / Contient ce dont les gardes ont besoin
type Middleware struct {
	conf        *config.Config
	metrics     *metrics.Metrics
	permissions memberStore
	tokens      *auth.Issuer
	proxies     proxySet
	origins     map[string]bool

	// nil when rate limiting is off
	global, strict, member, upload *keyedLimiter
}

// NewMiddleware wires the guards from config / Construit les gardes depuis la config
func NewMiddleware(conf *config.Config, metrics *metrics.Metrics, permissions memberStore, tokens *auth.Issuer) *Middleware {
	mw := &Middleware{
		conf:        conf,
		metrics:     metrics,
		permissions: permissions,
		tokens:      tokens,
		proxies:     parseProxies(conf.Security.TrustedProxies),
		origins:     make(map[string]bool, len(conf.Cors.AllowedOrigins)),
	}
	for _, o := range conf.Cors.AllowedOrigins {
		mw.origins[strings.TrimRight(o, "/")] = true
	}

	if conf.RateLimiter.Enabled {
		global, strict, member, upload := limitPolicies(conf)
		mw.global = newKeyedLimiter(global)
		mw.strict = newKeyedLimiter(strict)
		mw.member = newKeyedLimiter(member)
		mw.upload = newKeyedLimiter(upload)
	}
	return mw
}

// accessToken reads the cookie first, then the bearer header.
func accessToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(accessCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
	return token, ok && token != ""
}

// Auth verifies the access token and stores the member in the context.
// Vérifie le token d'accès et place le membre dans le contexte.
func (mw *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := accessToken(r)
		if !ok {
			ErrorResponse(w, "authentication required", http.StatusUnauthorized)
			return
		}

		claims, err := mw.tokens.Parse(raw)
		if err != nil {
			mw.metrics.RecordInvalidToken()
			ErrorResponse(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			mw.metrics.RecordInvalidToken()
			slog.Warn("access token with a bad subject", "subject", claims.Subject, "err", err)
			ErrorResponse(w, "invalid token", http.StatusUnauthorized)
			return
		}

		// Tokens outlive deleted accounts / Les tokens survivent aux comptes supprimés
		if mw.permissions != nil {
			if _, err := mw.permissions.GetByID(r.Context(), userID); err != nil {
				if errors.Is(err, repository.ErrNoRecord) {
					mw.metrics.RecordInvalidToken()
					ErrorResponse(w, "account no longer exists", http.StatusUnauthorized)
					return
				}
				slog.Error("Auth: failed to load member", "user_id", userID, "err", err)
				ErrorResponse(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), claims, userID)))
	})
}

// Cors echoes allowed origins and answers preflights / Renvoie les origines autorisées et répond aux preflights
func (mw *Middleware) Cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Add("Vary", "Origin")
		if origin := r.Header.Get("Origin"); origin != "" && (mw.origins["*"] || mw.origins[origin]) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+csrfHeaderName+", "+RequestIDHeader)
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// securityHeaders suit an API serving JSON, images and QR codes.
var securityHeaders = [][2]string{
	{"Content-Security-Policy", "default-src 'none'; img-src 'self' data:; frame-ancestors 'none'"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
}

// SecurityHeaders adds security headers, HSTS in production only / Ajoute les en-têtes de sécurité
func (mw *Middleware) SecurityHeaders(next http.Handler) http.Handler {
	hsts := mw.conf.IsProduction()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		if hsts {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// CSRF checks the double-submit cookie on every authenticated call / Vérifie le double cookie CSRF
func (mw *Middleware) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cookieToken string
		if cookie, err := r.Cookie(csrfCookieName); err == nil {
			cookieToken = cookie.Value
		}
		headerToken := r.Header.Get(csrfHeaderName)

		if !csrfTokensMatch(cookieToken, headerToken) {
			mw.metrics.RecordCSRFFailure()
			slog.Warn("csrf check failed",
				"path", r.URL.Path,
				"has_cookie", cookieToken != "",
				"has_header", headerToken != "",
			)
			ErrorResponse(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission checks user permission / Vérifie la permission de l'utilisateur
func (mw *Middleware) RequirePermission(permission domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				slog.Error("RequirePermission: user not found in context, Auth middleware not applied?")
				ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			hasPermission, err := mw.permissions.UserHasPermission(r.Context(), userID, permission)
			if err != nil {
				slog.Error("RequirePermission: failed to check user permission",
					"user_id", userID,
					"permission", permission,
					"err", err,
				)
				ErrorResponse(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if !hasPermission {
				mw.metrics.RecordPermissionDenial(permission.String())

				slog.Warn("permission denied",
					"user_id", userID,
					"permission", permission,
					"path", r.URL.Path,
					"method", r.Method,
				)

				ErrorResponse(w, "Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
