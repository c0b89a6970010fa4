package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Olprog59/go-familyhub/internal/app"
	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/repository"
	"github.com/Olprog59/go-familyhub/internal/service"
	"github.com/goccy/go-json"
)

// defaultBodyLimit caps JSON request bodies / Limite la taille des corps JSON
const defaultBodyLimit = 1 * 1024 * 1024

// Handler is a container for application dependencies that are required by HTTP handlers.
// By embedding the application's dependency injection container, it provides handlers
// with access to services, repositories, and configuration.
type Handler struct {
	container *app.Container
	proxies   proxySet
}

// NewHandler creates and returns a new Handler instance.
func NewHandler(container *app.Container) *Handler {
	return &Handler{
		container: container,
		proxies:   parseProxies(container.Config.Security.TrustedProxies),
	}
}

// ErrorResponse is a helper function for sending standardized JSON error responses.
// It sets the "Content-Type" header to "application/json", writes the specified HTTP status code,
// and sends a JSON body with an "error" key containing the provided message.
func ErrorResponse(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]any{
		"error": message,
	})
}

// validationResponse lists invalid fields / Liste les champs invalides
func validationResponse(w http.ResponseWriter, ve *domain.ValidationError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": ve.Fields,
	})
}

// respondError maps service errors to HTTP statuses / Associe les erreurs de service aux statuts HTTP
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		validationResponse(w, ve)
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUserNotFound):
		ErrorResponse(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		ErrorResponse(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrInvalidTransition):
		ErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrDuplicate):
		ErrorResponse(w, "already exists", http.StatusConflict)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAccountLocked):
		ErrorResponse(w, err.Error(), http.StatusUnauthorized)
	default:
		slog.Error("request failed", "request_id", GetRequestID(r.Context()), "path", r.URL.Path, "err", err)
		ErrorResponse(w, "internal server error", http.StatusInternalServerError)
	}
}

// writeJSON encodes data with a status / Encode les données avec un statut
func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode response", "err", err)
	}
}

// jsonResponse is a helper function for sending standardized JSON responses.
// It sets the "Content-Type" header to "application/json" and encodes the provided
// data structure into a JSON response body.
func jsonResponse(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// limitRequestBody wraps a request body with MaxBytesReader to limit its size.
// This prevents DoS attacks via large request bodies.
func limitRequestBody(w http.ResponseWriter, r *http.Request, maxBytes int64) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
}

// decodeJSON reads a size-limited JSON body, answering 400/413 itself / Lit un corps JSON limité
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	limitRequestBody(w, r, defaultBodyLimit)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// pathID parses the {id} path segment / Analyse le segment {id}
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// pageFromQuery reads page and limit / Lit page et limit
func pageFromQuery(r *http.Request) domain.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return domain.NewPage(page, limit)
}

// queryInt64 reads an optional numeric filter / Lit un filtre numérique optionnel
func queryInt64(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(key, key+" must be a number")
	}
	return v, nil
}

// queryTime reads an optional RFC 3339 timestamp or YYYY-MM-DD date / Lit un horodatage optionnel
func queryTime(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError(key, key+" must be an RFC 3339 timestamp or a date")
}
