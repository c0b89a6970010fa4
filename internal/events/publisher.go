package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

// ActivityMetrics counts published activities / Compte les activités publiées
type ActivityMetrics interface {
	RecordActivity(activityType string)
}

// Multi publishes to every target and joins their errors / Publie vers toutes les cibles
type Multi struct {
	targets []ports.ActivityPublisher
	metrics ActivityMetrics
}

// NewMulti skips nil targets / Ignore les cibles nil
func NewMulti(metrics ActivityMetrics, targets ...ports.ActivityPublisher) *Multi {
	m := &Multi{metrics: metrics}
	for _, t := range targets {
		if t != nil {
			m.targets = append(m.targets, t)
		}
	}
	return m
}

// Publish sends to all targets even when one fails / Envoie à toutes les cibles même si l'une échoue
func (m *Multi) Publish(ctx context.Context, activity domain.Activity) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.Publish(ctx, activity); err != nil {
			slog.Warn("failed to publish activity", "type", activity.Type, "error", err)
			errs = append(errs, err)
		}
	}
	if m.metrics != nil {
		m.metrics.RecordActivity(string(activity.Type))
	}
	return errors.Join(errs...)
}

// Noop discards activities.
type Noop struct{}

func (Noop) Publish(context.Context, domain.Activity) error { return nil }
