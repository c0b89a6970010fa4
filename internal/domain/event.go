package domain

import (
	"strings"
	"time"
)

// Event is a family calendar entry / Entrée du calendrier familial
type Event struct {
	BaseModel
	ID          int64
	Creator     UserSummary
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	// EndsAt is inclusive, for all-day entries it is the start of the last day
	EndsAt *time.Time
	AllDay bool
}

// End returns the last instant the event occupies / Retourne le dernier instant occupé
func (e *Event) End() time.Time {
	if e.EndsAt != nil {
		return *e.EndsAt
	}
	return e.StartsAt
}

// Overlaps checks intersection with [from, to) / Vérifie l'intersection avec [from, to)
func (e *Event) Overlaps(from, to time.Time) bool {
	if !to.IsZero() && !e.StartsAt.Before(to) {
		return false
	}
	if !from.IsZero() && e.End().Before(from) {
		return false
	}
	return true
}

// EventInput holds calendar entry fields / Champs d'une entrée de calendrier
type EventInput struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
	AllDay      bool
}

// Normalize trims text and aligns all-day events on dates / Nettoie le texte et aligne les journées entières
func (in *EventInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if !in.StartsAt.IsZero() {
		in.StartsAt = in.StartsAt.UTC()
	}
	if in.EndsAt != nil {
		end := in.EndsAt.UTC()
		in.EndsAt = &end
	}
	if in.AllDay {
		in.StartsAt = truncateDay(in.StartsAt)
		if in.EndsAt != nil {
			end := truncateDay(*in.EndsAt)
			in.EndsAt = &end
		}
	}
}

// Validate checks calendar fields / Vérifie les champs du calendrier
func (in EventInput) Validate() error {
	var v validator
	v.required("title", in.Title)
	v.maxLen("title", in.Title, MaxTitleLength)
	v.maxLen("description", in.Description, MaxDescriptionLength)
	v.maxLen("location", in.Location, MaxLocationLength)
	if in.StartsAt.IsZero() {
		v.add("starts_at", "starts_at is required")
	}
	if in.EndsAt != nil && !in.StartsAt.IsZero() && in.EndsAt.Before(in.StartsAt) {
		v.add("ends_at", "ends_at must not be before starts_at")
	}
	return v.err()
}

// EventPatch is a partial calendar change / Modification partielle d'une entrée
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	ClearEndsAt bool
	AllDay      *bool
}

// Merge produces the full input after the patch / Produit la saisie complète après modification
func (p EventPatch) Merge(e *Event) EventInput {
	in := EventInput{
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		AllDay:      e.AllDay,
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Location != nil {
		in.Location = *p.Location
	}
	if p.StartsAt != nil {
		in.StartsAt = *p.StartsAt
	}
	if p.ClearEndsAt {
		in.EndsAt = nil
	} else if p.EndsAt != nil {
		in.EndsAt = p.EndsAt
	}
	if p.AllDay != nil {
		in.AllDay = *p.AllDay
	}
	in.Normalize()
	return in
}

// EventFilter narrows calendar listings / Filtre les listes du calendrier
type EventFilter struct {
	From      time.Time
	To        time.Time
	CreatorID int64
	Page      Page
}

// Validate checks the time window / Vérifie la fenêtre temporelle
func (f EventFilter) Validate() error {
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return NewValidationError("to", "to must be after from")
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
