package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

var _ ports.ActivityPublisher = (*NATSPublisher)(nil)

// NATSPublisher publishes activities on <prefix>.<type> subjects / Publie les activités sur NATS
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// ConnectNATS opens a connection that keeps reconnecting / Ouvre une connexion qui se reconnecte
func ConnectNATS(url, name, prefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(5 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.DrainTimeout(10 * time.Second),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("connected to NATS", "url", conn.ConnectedUrl())
	return NewNATSPublisher(conn, prefix), nil
}

// NewNATSPublisher wraps an existing connection / Enveloppe une connexion existante
func NewNATSPublisher(conn *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an activity is published on / Retourne le sujet de publication
func (p *NATSPublisher) Subject(t domain.ActivityType) string {
	if p.prefix == "" {
		return string(t)
	}
	return p.prefix + "." + string(t)
}

// Publish sends the activity as JSON / Envoie l'activité en JSON
func (p *NATSPublisher) Publish(_ context.Context, activity domain.Activity) error {
	if p.conn == nil || p.conn.IsClosed() {
		return nats.ErrConnectionClosed
	}
	data, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.Subject(activity.Type), data)
}

// Close drains pending messages then closes / Vide les messages en attente puis ferme
func (p *NATSPublisher) Close() error {
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Drain()
}
