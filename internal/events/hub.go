// Package events fans domain activities out to live websocket clients and NATS.
package events

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

var _ ports.ActivityPublisher = (*Hub)(nil)

// ClientMetrics tracks connected clients / Suit les clients connectés
type ClientMetrics interface {
	IncrementWebSocketClients()
	DecrementWebSocketClients()
}

// Hub keeps the set of live clients and broadcasts to them / Garde les clients connectés et leur diffuse
type Hub struct {
	upgrader websocket.Upgrader
	metrics  ClientMetrics

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a hub accepting the given origins / Crée un hub acceptant les origines données
// An empty origin list only accepts same-host requests.
func NewHub(allowedOrigins []string, metrics ClientMetrics) *Hub {
	h := &Hub{
		metrics: metrics,
		clients: make(map[*client]struct{}),
	}
	// Same rules as the CORS middleware / Mêmes règles que le middleware CORS
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(o, "/")] = true
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if origins["*"] || origins[origin] {
				return true
			}
			return origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
	return h
}

// Serve upgrades the request and streams activities until the client leaves / Met à niveau la requête et diffuse jusqu'au départ du client
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID int64) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{hub: h, conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		_ = conn.Close()
		return nil
	}

	slog.Debug("websocket client connected", "user_id", userID)
	go c.writePump()
	c.readPump()
	return nil
}

// Publish broadcasts an activity to every client / Diffuse une activité à tous les clients
// Clients whose buffer is full are dropped.
func (h *Hub) Publish(_ context.Context, activity domain.Activity) error {
	msg, err := json.Marshal(activity)
	if err != nil {
		return err
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slog.Warn("dropping slow websocket client", "user_id", c.userID)
		h.unregister(c)
	}
	return nil
}

// Clients returns the number of connected clients / Retourne le nombre de clients connectés
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client / Déconnecte tous les clients
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.metrics != nil {
		h.metrics.IncrementWebSocketClients()
	}
	return true
}

// unregister removes the client once and closes its send channel
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if h.metrics != nil {
		h.metrics.DecrementWebSocketClients()
	}
}
