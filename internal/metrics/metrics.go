// Package metrics exposes the Prometheus collectors of familyhub.
// Every metric lives under the familyhub namespace, grouped by subsystem.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "familyhub"

// latencyBuckets spans 10ms to 10s / Couvre de 10ms à 10s
var latencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics holds all Prometheus metric collectors / Contient tous les collecteurs de métriques Prometheus
type Metrics struct {
	reg prometheus.Registerer

	// auth
	LoginAttempts   *prometheus.CounterVec // status: success, failure, locked
	Registrations   prometheus.Counter
	TokenRefreshes  *prometheus.CounterVec // status: success, invalid, expired, binding_failure
	AccountLockouts prometheus.Counter

	// http
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	ActiveConnections prometheus.Gauge

	// security
	RateLimitHits     *prometheus.CounterVec
	CSRFFailures      prometheus.Counter
	InvalidTokens     prometheus.Counter
	TokenBindingFails prometheus.Counter
	PermissionDenials *prometheus.CounterVec

	// content
	ContentWrites *prometheus.CounterVec
	Reactions     *prometheus.CounterVec
	Activities    *prometheus.CounterVec

	// delivery
	CacheLookups     *prometheus.CounterVec
	WebSocketClients prometheus.Gauge
	Notifications    *prometheus.CounterVec

	// jobs
	BackgroundTasks *prometheus.GaugeVec
	BackgroundRuns  *prometheus.CounterVec
}

// subsystem builds collectors sharing a name prefix / Construit des collecteurs avec un préfixe commun
type subsystem struct {
	factory promauto.Factory
	name    string
}

func (s subsystem) counter(name, help string) prometheus.Counter {
	return s.factory.NewCounter(prometheus.CounterOpts{Namespace: namespace, Subsystem: s.name, Name: name, Help: help})
}

func (s subsystem) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return s.factory.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Subsystem: s.name, Name: name, Help: help}, labels)
}

func (s subsystem) gauge(name, help string) prometheus.Gauge {
	return s.factory.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Subsystem: s.name, Name: name, Help: help})
}

func (s subsystem) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return s.factory.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Subsystem: s.name, Name: name, Help: help}, labels)
}

// NewMetrics registers every collector on reg, the default registerer when nil.
// Enregistre tous les collecteurs sur reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	auth := subsystem{factory, "auth"}
	web := subsystem{factory, "http"}
	security := subsystem{factory, "security"}
	content := subsystem{factory, "content"}
	delivery := subsystem{factory, "delivery"}
	jobs := subsystem{factory, "jobs"}

	return &Metrics{
		reg: reg,

		LoginAttempts:   auth.counterVec("login_attempts_total", "Login attempts by status.", "status"),
		Registrations:   auth.counter("registrations_total", "Accepted registrations."),
		TokenRefreshes:  auth.counterVec("token_refreshes_total", "Refresh token rotations by status.", "status"),
		AccountLockouts: auth.counter("account_lockouts_total", "Accounts locked after too many failed logins."),

		HTTPRequests: web.counterVec("requests_total", "HTTP requests by method, route and status code.", "method", "path", "status_code"),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: web.name,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   latencyBuckets,
		}, []string{"method", "path"}),
		ActiveConnections: web.gauge("active_connections", "Requests currently being served."),

		RateLimitHits:     security.counterVec("rate_limit_hits_total", "Requests rejected by a rate limiter.", "endpoint"),
		CSRFFailures:      security.counter("csrf_failures_total", "Requests rejected by the CSRF check."),
		InvalidTokens:     security.counter("invalid_tokens_total", "Invalid or expired access tokens."),
		TokenBindingFails: security.counter("token_binding_failures_total", "Refresh tokens presented from another client."),
		PermissionDenials: security.counterVec("permission_denials_total", "Requests denied by permission.", "permission"),

		ContentWrites: content.counterVec("writes_total", "Family record writes by kind and operation.", "kind", "operation"),
		Reactions:     content.counterVec("reactions_total", "Reactions added by kind.", "kind"),
		Activities:    content.counterVec("activities_published_total", "Activities published by type.", "type"),

		CacheLookups:     delivery.counterVec("cache_lookups_total", "Profile cache lookups by result.", "result"),
		WebSocketClients: delivery.gauge("websocket_clients", "Connected live stream clients."),
		Notifications:    delivery.counterVec("notifications_total", "Email notifications by provider and status.", "provider", "status"),

		BackgroundTasks: jobs.gaugeVec("running", "1 while a scheduled task runs.", "task_name"),
		BackgroundRuns:  jobs.counterVec("runs_total", "Scheduled task runs by task and status.", "task_name", "status"),
	}
}

// WatchDatabase exports the connection pool stats of db / Exporte les statistiques du pool
func (m *Metrics) WatchDatabase(db *sql.DB, name string) error {
	return m.reg.Register(collectors.NewDBStatsCollector(db, name))
}

// WatchDroppedLogs exports a running count of log lines that never reached the sink.
func (m *Metrics) WatchDroppedLogs(sink string, dropped func() int64) error {
	return m.reg.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "logging",
		Name:        "dropped_lines_total",
		Help:        "Log lines the remote sink failed to accept.",
		ConstLabels: prometheus.Labels{"sink": sink},
	}, func() float64 { return float64(dropped()) }))
}

func (m *Metrics) RecordLoginAttempt(status string) {
	m.LoginAttempts.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRegistration() {
	m.Registrations.Inc()
}

func (m *Metrics) RecordTokenRefresh(status string) {
	m.TokenRefreshes.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordAccountLockout() {
	m.AccountLockouts.Inc()
}

// RecordHTTPRequest counts a finished request / Compte une requête terminée
// path must be the route pattern, not the raw URL.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int) {
	m.HTTPRequests.WithLabelValues(method, path, statusLabel(statusCode)).Inc()
}

func (m *Metrics) RecordHTTPDuration(method, path string, duration time.Duration) {
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) IncrementActiveConnections() {
	m.ActiveConnections.Inc()
}

func (m *Metrics) DecrementActiveConnections() {
	m.ActiveConnections.Dec()
}

func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) RecordCSRFFailure() {
	m.CSRFFailures.Inc()
}

func (m *Metrics) RecordInvalidToken() {
	m.InvalidTokens.Inc()
}

func (m *Metrics) RecordTokenBindingFailure() {
	m.TokenBindingFails.Inc()
}

func (m *Metrics) RecordPermissionDenial(permission string) {
	m.PermissionDenials.WithLabelValues(permission).Inc()
}

// RecordContentWrite counts a write on a family record / Compte une écriture sur un enregistrement familial
func (m *Metrics) RecordContentWrite(kind, operation string) {
	m.ContentWrites.WithLabelValues(kind, operation).Inc()
}

func (m *Metrics) RecordReaction(kind string) {
	m.Reactions.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordActivity(activityType string) {
	m.Activities.WithLabelValues(activityType).Inc()
}

// RecordCacheLookup records "hit", "miss" or "error".
func (m *Metrics) RecordCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementWebSocketClients() {
	m.WebSocketClients.Inc()
}

func (m *Metrics) DecrementWebSocketClients() {
	m.WebSocketClients.Dec()
}

func (m *Metrics) RecordNotification(provider, status string) {
	m.Notifications.WithLabelValues(provider, status).Inc()
}

// SetBackgroundTaskStatus flags a scheduled task as running or idle.
func (m *Metrics) SetBackgroundTaskStatus(taskName string, running bool) {
	v := 0.0
	if running {
		v = 1
	}
	m.BackgroundTasks.WithLabelValues(taskName).Set(v)
}

// RecordBackgroundRun records the outcome of a scheduled task run.
func (m *Metrics) RecordBackgroundRun(taskName string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.BackgroundRuns.WithLabelValues(taskName, status).Inc()
}

// statusLabel keeps the codes the API returns and buckets the rest by class.
// Garde les codes de l'API et regroupe les autres par classe.
func statusLabel(code int) string {
	switch code {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent,
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound,
		http.StatusConflict, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusServiceUnavailable:
		return strconv.Itoa(code)
	}
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
