package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/repository"
)

// HelpRequestService manages help requests and their lifecycle / Gère les demandes d'aide et leur cycle de vie
type HelpRequestService struct {
	contentBase
	requests ports.HelpRequestRepository
	users    ports.UserReader
	notifier *Notifier
	grace    time.Duration
}

// NewHelpRequestService creates help request service / Crée le service des demandes d'aide
func NewHelpRequestService(
	requests ports.HelpRequestRepository,
	users ports.UserReader,
	notifier *Notifier,
	grace time.Duration,
	deps ContentDeps,
) *HelpRequestService {
	return &HelpRequestService{
		contentBase: newContentBase(deps),
		requests:    requests,
		users:       users,
		notifier:    notifier,
		grace:       grace,
	}
}

// Create asks the family for help and notifies other members / Demande de l'aide et prévient les autres membres
func (s *HelpRequestService) Create(ctx context.Context, actor domain.Actor, in domain.HelpRequestInput) (*domain.HelpRequest, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	req, err := s.requests.Create(ctx, actor.ID, in)
	if err != nil {
		return nil, storeError(err, "failed to create help request", "user_id", actor.ID)
	}

	s.written("help_request", "create")
	s.invalidate(ctx, actor.ID)
	s.publish(ctx, domain.ActivityHelpCreated, actor.ID, req.ID, helpPayload(req))
	s.notifier.HelpRequested(ctx, req)
	return req, nil
}

func (s *HelpRequestService) Get(ctx context.Context, id int64) (*domain.HelpRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load help request", "help_request_id", id)
	}
	return req, nil
}

// Update edits request fields / Modifie les champs de la demande
func (s *HelpRequestService) Update(ctx context.Context, actor domain.Actor, id int64, patch domain.HelpRequestPatch) (*domain.HelpRequest, error) {
	return s.change(ctx, id, domain.ActivityHelpUpdated, actor, func(req *domain.HelpRequest) error {
		if err := s.access.CanModify(ctx, actor, req.Requester.ID); err != nil {
			return err
		}
		in := patch.Merge(req)
		if err := in.Validate(); err != nil {
			return err
		}
		req.Title = in.Title
		req.Description = in.Description
		req.NeededBy = in.NeededBy
		return nil
	})
}

// Claim assigns the actor as helper / Assigne l'acteur comme aidant
func (s *HelpRequestService) Claim(ctx context.Context, actor domain.Actor, id int64) (*domain.HelpRequest, error) {
	helper, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, storeError(err, "failed to load helper", "user_id", actor.ID)
	}
	return s.change(ctx, id, domain.ActivityHelpClaimed, actor, func(req *domain.HelpRequest) error {
		return req.Claim(helper.Summary())
	})
}

// Unclaim releases the request, by the helper or a moderator / Libère la demande
func (s *HelpRequestService) Unclaim(ctx context.Context, actor domain.Actor, id int64) (*domain.HelpRequest, error) {
	return s.change(ctx, id, domain.ActivityHelpUnclaimed, actor, func(req *domain.HelpRequest) error {
		if req.Status != domain.HelpClaimed {
			return ErrInvalidTransition
		}
		if !req.IsHelper(actor.ID) {
			if err := s.access.Require(ctx, actor, domain.PermissionContentModerate); err != nil {
				return err
			}
		}
		return req.Unclaim()
	})
}

// Resolve closes the request, by requester, helper or moderator / Clôture la demande
func (s *HelpRequestService) Resolve(ctx context.Context, actor domain.Actor, id int64) (*domain.HelpRequest, error) {
	return s.change(ctx, id, domain.ActivityHelpResolved, actor, func(req *domain.HelpRequest) error {
		if !req.IsHelper(actor.ID) {
			if err := s.access.CanModify(ctx, actor, req.Requester.ID); err != nil {
				return err
			}
		}
		return req.Resolve(time.Now().UTC())
	})
}

// Reopen revives the request, by requester or moderator / Relance la demande
func (s *HelpRequestService) Reopen(ctx context.Context, actor domain.Actor, id int64) (*domain.HelpRequest, error) {
	return s.change(ctx, id, domain.ActivityHelpReopened, actor, func(req *domain.HelpRequest) error {
		if err := s.access.CanModify(ctx, actor, req.Requester.ID); err != nil {
			return err
		}
		return req.Reopen()
	})
}

func (s *HelpRequestService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	req, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.access.CanModify(ctx, actor, req.Requester.ID); err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete help request", "help_request_id", id)
	}

	s.written("help_request", "delete")
	s.invalidate(ctx, req.Requester.ID)
	s.publish(ctx, domain.ActivityHelpDeleted, actor.ID, id, nil)
	return nil
}

// List returns active requests first / Retourne d'abord les demandes actives
func (s *HelpRequestService) List(ctx context.Context, filter domain.HelpRequestFilter) ([]*domain.HelpRequest, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, domain.NewValidationError("status", "unknown status")
	}
	filter.Page = filter.Page.Normalize()
	reqs, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, 0, storeError(err, "failed to list help requests")
	}
	return reqs, total, nil
}

// ExpireOverdue expires open requests past their deadline plus grace / Expire les demandes ouvertes en retard
func (s *HelpRequestService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.requests.ExpireOverdue(ctx, now.Add(-s.grace))
	if err != nil {
		slog.Error("failed to expire help requests", "err", err)
		return 0, errInternal
	}
	for _, id := range ids {
		s.publish(ctx, domain.ActivityHelpExpired, 0, id, nil)
	}
	if len(ids) > 0 {
		s.written("help_request", "expire")
		slog.Info("expired overdue help requests", "count", len(ids))
	}
	return len(ids), nil
}

// change loads a request, applies a transition and stores it / Charge, applique une transition et enregistre
func (s *HelpRequestService) change(
	ctx context.Context,
	id int64,
	kind domain.ActivityType,
	actor domain.Actor,
	apply func(*domain.HelpRequest) error,
) (*domain.HelpRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := req.Status
	if err := apply(req); err != nil {
		return nil, err
	}
	if err := s.requests.Update(ctx, req, from); err != nil {
		if errors.Is(err, repository.ErrStale) {
			// Another member moved it first / Un autre membre l'a changée avant
			return nil, ErrInvalidTransition
		}
		return nil, storeError(err, "failed to update help request", "help_request_id", id)
	}

	s.written("help_request", strings.TrimPrefix(string(kind), "help_request."))
	s.invalidate(ctx, req.Requester.ID)
	s.publish(ctx, kind, actor.ID, id, helpPayload(req))
	return req, nil
}

func helpPayload(req *domain.HelpRequest) map[string]any {
	payload := map[string]any{"status": req.Status, "requester_id": req.Requester.ID}
	if req.Helper != nil {
		payload["helper_id"] = req.Helper.ID
	}
	return payload
}
