package service

import (
	"context"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

// EventService manages the family calendar / Gère le calendrier familial
type EventService struct {
	contentBase
	events ports.EventRepository
}

// NewEventService creates calendar service / Crée le service du calendrier
func NewEventService(events ports.EventRepository, deps ContentDeps) *EventService {
	return &EventService{contentBase: newContentBase(deps), events: events}
}

// Create adds a calendar entry / Ajoute une entrée au calendrier
func (s *EventService) Create(ctx context.Context, actor domain.Actor, in domain.EventInput) (*domain.Event, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	event, err := s.events.Create(ctx, actor.ID, in)
	if err != nil {
		return nil, storeError(err, "failed to create event", "user_id", actor.ID)
	}

	s.written("event", "create")
	s.publish(ctx, domain.ActivityEventCreated, actor.ID, event.ID, map[string]any{"starts_at": event.StartsAt})
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load event", "event_id", id)
	}
	return event, nil
}

// Update edits a calendar entry / Modifie une entrée
func (s *EventService) Update(ctx context.Context, actor domain.Actor, id int64, patch domain.EventPatch) (*domain.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanModify(ctx, actor, event.Creator.ID); err != nil {
		return nil, err
	}

	in := patch.Merge(event)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	event.Title = in.Title
	event.Description = in.Description
	event.Location = in.Location
	event.StartsAt = in.StartsAt
	event.EndsAt = in.EndsAt
	event.AllDay = in.AllDay

	if err := s.events.Update(ctx, event); err != nil {
		return nil, storeError(err, "failed to update event", "event_id", id)
	}

	s.written("event", "update")
	s.publish(ctx, domain.ActivityEventUpdated, actor.ID, id, map[string]any{"starts_at": event.StartsAt})
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.access.CanModify(ctx, actor, event.Creator.ID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete event", "event_id", id)
	}

	s.written("event", "delete")
	s.publish(ctx, domain.ActivityEventDeleted, actor.ID, id, nil)
	return nil
}

// List returns entries overlapping the window by start time / Retourne les entrées de la fenêtre
func (s *EventService) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	filter.Page = filter.Page.Normalize()
	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, 0, storeError(err, "failed to list events")
	}
	return events, total, nil
}

// Upcoming returns the next n entries still running / Retourne les n prochaines entrées
func (s *EventService) Upcoming(ctx context.Context, n int) ([]*domain.Event, error) {
	events, _, err := s.List(ctx, domain.EventFilter{
		From: time.Now().UTC(),
		Page: domain.Page{Limit: n},
	})
	return events, err
}
