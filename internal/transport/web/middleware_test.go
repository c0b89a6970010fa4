package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/metrics"
	"github.com/Olprog59/go-familyhub/internal/mocks"
	"github.com/Olprog59/go-familyhub/internal/service/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when missing", incoming: ""},
		{name: "client id reused", incoming: "req-42.a_b", keep: true},
		{name: "unsafe id replaced", incoming: "bad id\n", keep: false},
		{name: "oversized id replaced", incoming: strings.Repeat("a", 65), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.keep {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
			}
		})
	}
}

func TestLogging_RejectsTokensInQuery(t *testing.T) {
	for _, param := range []string{"access_token", "refresh_token", "token"} {
		rec := httptest.NewRecorder()
		Logging(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me?"+param+"=abc", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code, param)
	}

	rec := httptest.NewRecorder()
	Logging(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts?q=token", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
			w.WriteHeader(http.StatusOK)
		}
	})

	rec := httptest.NewRecorder()
	Timeout(20*time.Millisecond)(slow).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"request timeout"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Timeout(time.Second)(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMiddleware_Metrics(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	mw := NewMiddleware(&config.Config{}, m, nil, nil)

	mux := http.NewServeMux()
	mux.Handle("GET /api/posts/{id}", noContent)
	handler := mw.Metrics(mux)

	for _, path := range []string{"/api/posts/1", "/api/posts/2", "/nowhere"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "GET /api/posts/{id}", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveConnections))
}

func TestMiddleware_Cors(t *testing.T) {
	conf := &config.Config{Cors: config.CorsConfig{AllowedOrigins: []string{"https://family.test/"}}}
	mw := NewMiddleware(conf, metrics.NewMetrics(prometheus.NewRegistry()), nil, nil)
	handler := mw.Cors(noContent)

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "https://family.test", wantStatus: http.StatusNoContent, wantOrigin: "https://family.test"},
		{name: "foreign origin", method: http.MethodGet, origin: "https://evil.test", wantStatus: http.StatusNoContent},
		{name: "preflight", method: http.MethodOptions, origin: "https://family.test", preflight: true, wantStatus: http.StatusNoContent, wantOrigin: "https://family.test"},
		{name: "plain options reaches handler", method: http.MethodOptions, origin: "https://family.test", wantStatus: http.StatusNoContent, wantOrigin: "https://family.test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/posts", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.preflight {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), csrfHeaderName)
			}
		})
	}
}

func TestMiddleware_SecurityHeaders(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			mw := NewMiddleware(&config.Config{Environment: env}, metrics.NewMetrics(prometheus.NewRegistry()), nil, nil)
			rec := httptest.NewRecorder()
			mw.SecurityHeaders(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, env == "production", rec.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestMiddleware_CSRF(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	mw := NewMiddleware(&config.Config{}, m, nil, nil)
	handler := mw.CSRF(noContent)

	do := func(cookie, header string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: cookie})
		}
		if header != "" {
			req.Header.Set(csrfHeaderName, header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do("abc123", "abc123"))
	assert.Equal(t, http.StatusForbidden, do("abc123", "other"))
	assert.Equal(t, http.StatusForbidden, do("", "abc123"))
	assert.Equal(t, http.StatusForbidden, do("abc123", ""))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CSRFFailures))
}

func TestMiddleware_AuthRejectsMissingToken(t *testing.T) {
	mw := NewMiddleware(&config.Config{}, metrics.NewMetrics(prometheus.NewRegistry()), nil, nil)
	rec := httptest.NewRecorder()
	mw.Auth(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_AuthChecksMemberStillExists(t *testing.T) {
	tokens, err := auth.NewIssuer("middleware-secret-0123456789abcdef", time.Minute, time.Hour)
	require.NoError(t, err)
	repo := mocks.NewMockUserRepository()
	alice := repo.AddUser(&domain.User{Email: "alice@family.test"})

	m := metrics.NewMetrics(prometheus.NewRegistry())
	mw := NewMiddleware(&config.Config{}, m, repo, tokens)
	handler := mw.Auth(noContent)

	do := func(userID int64) int {
		pair, err := tokens.Issue(userID, "user")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", bearerPrefix+pair.AccessToken)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do(alice.ID))
	assert.Equal(t, http.StatusUnauthorized, do(alice.ID+1), "signed token for a removed account")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvalidTokens))

	repo.FailOn("GetByID", errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, do(alice.ID))
}

func TestAccessToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := accessToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Bearer from-header")
	token, ok := accessToken(req)
	assert.True(t, ok)
	assert.Equal(t, "from-header", token)

	req.AddCookie(&http.Cookie{Name: "access_token", Value: "from-cookie"})
	token, _ = accessToken(req)
	assert.Equal(t, "from-cookie", token, "cookie first")
}
