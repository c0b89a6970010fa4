package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidTransition is returned when a status change is not allowed / Retourné quand un changement d'état est interdit
var ErrInvalidTransition = errors.New("invalid status transition")

// HelpStatus is the lifecycle state of a help request / État du cycle de vie d'une demande d'aide
type HelpStatus string

const (
	HelpOpen     HelpStatus = "open"
	HelpClaimed  HelpStatus = "claimed"
	HelpResolved HelpStatus = "resolved"
	HelpExpired  HelpStatus = "expired"
)

// IsValid checks help status / Vérifie l'état
func (s HelpStatus) IsValid() bool {
	switch s {
	case HelpOpen, HelpClaimed, HelpResolved, HelpExpired:
		return true
	}
	return false
}

// IsActive reports whether someone can still help / Indique si quelqu'un peut encore aider
func (s HelpStatus) IsActive() bool {
	return s == HelpOpen || s == HelpClaimed
}

// HelpRequest asks the family for a hand / Demande un coup de main à la famille
type HelpRequest struct {
	BaseModel
	ID          int64
	Requester   UserSummary
	Helper      *UserSummary
	Title       string
	Description string
	Status      HelpStatus
	NeededBy    *time.Time
	ResolvedAt  *time.Time
}

// Claim assigns a helper to an open request / Assigne un aidant à une demande ouverte
func (h *HelpRequest) Claim(helper UserSummary) error {
	if h.Status != HelpOpen {
		return ErrInvalidTransition
	}
	if helper.ID == h.Requester.ID {
		return NewValidationError("helper", "you cannot claim your own request")
	}
	h.Helper = &helper
	h.Status = HelpClaimed
	return nil
}

// Unclaim releases a claimed request / Libère une demande prise en charge
func (h *HelpRequest) Unclaim() error {
	if h.Status != HelpClaimed {
		return ErrInvalidTransition
	}
	h.Helper = nil
	h.Status = HelpOpen
	return nil
}

// Resolve closes an active request / Clôture une demande active
func (h *HelpRequest) Resolve(now time.Time) error {
	if !h.Status.IsActive() {
		return ErrInvalidTransition
	}
	h.Status = HelpResolved
	h.ResolvedAt = &now
	return nil
}

// Reopen revives a resolved or expired request / Relance une demande résolue ou expirée
func (h *HelpRequest) Reopen() error {
	if h.Status != HelpResolved && h.Status != HelpExpired {
		return ErrInvalidTransition
	}
	h.Status = HelpOpen
	h.Helper = nil
	h.ResolvedAt = nil
	return nil
}

// IsHelper reports whether the actor claimed the request / Indique si l'acteur a pris en charge la demande
func (h *HelpRequest) IsHelper(actorID int64) bool {
	return h.Helper != nil && h.Helper.ID == actorID
}

// HelpRequestInput holds help request fields / Champs d'une demande d'aide
type HelpRequestInput struct {
	Title       string
	Description string
	NeededBy    *time.Time
}

// Normalize trims input / Nettoie la saisie
func (in *HelpRequestInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.NeededBy != nil {
		t := in.NeededBy.UTC()
		in.NeededBy = &t
	}
}

// Validate checks help request fields / Vérifie les champs de la demande
func (in HelpRequestInput) Validate() error {
	var v validator
	v.required("title", in.Title)
	v.maxLen("title", in.Title, MaxTitleLength)
	v.maxLen("description", in.Description, MaxDescriptionLength)
	return v.err()
}

// HelpRequestPatch is a partial help request change / Modification partielle d'une demande
type HelpRequestPatch struct {
	Title         *string
	Description   *string
	NeededBy      *time.Time
	ClearNeededBy bool
}

// Merge produces the full input after the patch / Produit la saisie complète après modification
func (p HelpRequestPatch) Merge(h *HelpRequest) HelpRequestInput {
	in := HelpRequestInput{Title: h.Title, Description: h.Description, NeededBy: h.NeededBy}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.ClearNeededBy {
		in.NeededBy = nil
	} else if p.NeededBy != nil {
		in.NeededBy = p.NeededBy
	}
	in.Normalize()
	return in
}

// HelpRequestFilter narrows help request listings / Filtre les listes de demandes
type HelpRequestFilter struct {
	Status      HelpStatus
	RequesterID int64
	HelperID    int64
	Page        Page
}
