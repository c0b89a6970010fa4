package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	c := s.newClient()

	var health HealthResponse
	c.call(http.MethodGet, "/health", nil, http.StatusOK, &health)
	assert.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Clients)
	assert.Equal(t, 0, *health.Clients)

	var ready HealthResponse
	c.call(http.MethodGet, "/readiness", nil, http.StatusOK, &ready)
	assert.Equal(t, "ok", ready.Status)
	assert.Equal(t, map[string]string{"database": "ok", "cache": "ok"}, ready.Checks)

	resp := c.do(http.MethodGet, "/health", nil)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestReadiness_DatabaseDown(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.container.DB.Close())

	var ready HealthResponse
	s.newClient().call(http.MethodGet, "/readiness", nil, http.StatusServiceUnavailable, &ready)
	assert.Equal(t, "error", ready.Status)
	assert.NotEqual(t, "ok", ready.Checks["database"])
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m 5s"},
		{2*time.Hour + 5*time.Minute + 30*time.Second, "2h 5m"},
		{49*time.Hour + 15*time.Minute + 10*time.Second, "2d 1h 15m"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatUptime(tt.in))
		})
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("title", "title is required"), http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"user not found", service.ErrUserNotFound, http.StatusNotFound},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"transition", service.ErrInvalidTransition, http.StatusConflict},
		{"locked", service.ErrAccountLocked, http.StatusUnauthorized},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestQueryTime(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"", time.Time{}, false},
		{"2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024-06-01T10:00:00%2B02:00", time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), false},
		{"tomorrow", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/events?from="+tt.raw, nil)
			got, err := queryTime(r, "from")
			if tt.wantErr {
				_, ok := domain.AsValidationError(err)
				assert.True(t, ok)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
