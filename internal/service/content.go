package service

import (
	"context"
	"log/slog"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

// ContentMetricsRecorder records content metrics / Enregistre les métriques de contenu
type ContentMetricsRecorder interface {
	RecordContentWrite(kind, operation string)
	RecordReaction(kind string)
}

// ProfileInvalidator drops cached profiles / Supprime les profils en cache
type ProfileInvalidator interface {
	InvalidateProfile(ctx context.Context, userID int64)
}

// ContentDeps groups collaborators shared by content services / Regroupe les dépendances des services de contenu
type ContentDeps struct {
	Access    *Authorizer
	Publisher ports.ActivityPublisher
	Profiles  ProfileInvalidator
	Metrics   ContentMetricsRecorder
}

type contentBase struct {
	access    *Authorizer
	publisher ports.ActivityPublisher
	profiles  ProfileInvalidator
	metrics   ContentMetricsRecorder
}

func newContentBase(deps ContentDeps) contentBase {
	return contentBase{
		access:    deps.Access,
		publisher: deps.Publisher,
		profiles:  deps.Profiles,
		metrics:   deps.Metrics,
	}
}

// publish emits an activity, failures are only logged / Émet une activité, les échecs sont journalisés
func (b contentBase) publish(ctx context.Context, kind domain.ActivityType, actorID, subjectID int64, payload any) {
	if b.publisher == nil {
		return
	}
	activity := domain.NewActivity(kind, actorID, subjectID, payload)
	if err := b.publisher.Publish(ctx, activity); err != nil {
		slog.Warn("failed to publish activity", "type", kind, "subject_id", subjectID, "err", err)
	}
}

func (b contentBase) written(kind, operation string) {
	if b.metrics != nil {
		b.metrics.RecordContentWrite(kind, operation)
	}
}

func (b contentBase) invalidate(ctx context.Context, userIDs ...int64) {
	if b.profiles == nil {
		return
	}
	for _, id := range userIDs {
		if id > 0 {
			b.profiles.InvalidateProfile(ctx, id)
		}
	}
}
