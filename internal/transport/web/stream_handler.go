package web

import (
	"log/slog"
	"net/http"
)

// Stream upgrades to a websocket streaming domain events / Passe en websocket pour diffuser les événements
// Browsers cannot set X-CSRF-Token on an upgrade, the hub checks Origin instead.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.container.Hub.Serve(w, r, userID); err != nil {
		// The upgrader already answered the client / L'upgrader a déjà répondu au client
		slog.Warn("websocket upgrade failed", "user_id", userID, "err", err)
	}
}
