package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HealthResponse represents the response structure for health check endpoints.
type HealthResponse struct {
	Status    string            `json:"status"`           // "ok" or "error"
	Timestamp time.Time         `json:"timestamp"`        // Current server time
	Checks    map[string]string `json:"checks,omitempty"` // Individual component health
	Uptime    string            `json:"uptime,omitempty"`
	Clients   *int              `json:"live_clients,omitempty"`
}

var startTime = time.Now()

// HealthCheck handles the /health endpoint.
// It never touches dependencies, use /readiness for that.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	clients := h.container.Hub.Clients()
	jsonResponse(w, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    formatUptime(time.Since(startTime)),
		Clients:   &clients,
	})
}

// ReadinessCheck verifies the database and cache answer / Vérifie que la base et le cache répondent
// It returns 503 when one of them is down.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": h.check(ctx, "database", h.checkDatabase),
		"cache":    h.check(ctx, "cache", h.container.Cache.Ping),
	}

	status, code := "ok", http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status, code = "error", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

func (h *Handler) check(ctx context.Context, name string, ping func(context.Context) error) string {
	if err := ping(ctx); err != nil {
		slog.Warn("readiness check failed", "component", name, "err", err)
		return "error"
	}
	return "ok"
}

func (h *Handler) checkDatabase(ctx context.Context) error {
	var one int
	return h.container.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

// formatUptime renders a duration as "1d 5h 23m", "2h 15m 30s" or "45s".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	add := func(v int, unit string) {
		if v > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", v, unit))
		}
	}

	switch {
	case days > 0:
		add(days, "d")
		add(hours, "h")
		add(minutes, "m")
	case hours > 0:
		add(hours, "h")
		add(minutes, "m")
		add(seconds, "s")
	case minutes > 0:
		add(minutes, "m")
		add(seconds, "s")
	default:
		return fmt.Sprintf("%ds", seconds)
	}
	return strings.Join(parts, " ")
}
