package service

import (
	"context"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/shopspring/decimal"
)

// GoalService manages shared goals / Gère les objectifs partagés
type GoalService struct {
	contentBase
	goals ports.GoalRepository
}

// NewGoalService creates goal service / Crée le service des objectifs
func NewGoalService(goals ports.GoalRepository, deps ContentDeps) *GoalService {
	return &GoalService{contentBase: newContentBase(deps), goals: goals}
}

// Create adds a goal, completed at once when progress already reaches target / Ajoute un objectif
func (s *GoalService) Create(ctx context.Context, actor domain.Actor, in domain.GoalInput) (*domain.Goal, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	goal, err := s.goals.Create(ctx, actor.ID, in)
	if err != nil {
		return nil, storeError(err, "failed to create goal", "user_id", actor.ID)
	}

	s.written("goal", "create")
	s.invalidate(ctx, actor.ID)
	s.publish(ctx, domain.ActivityGoalCreated, actor.ID, goal.ID, goalPayload(goal))
	return goal, nil
}

func (s *GoalService) Get(ctx context.Context, id int64) (*domain.Goal, error) {
	goal, err := s.goals.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load goal", "goal_id", id)
	}
	return goal, nil
}

// Update edits goal fields / Modifie les champs de l'objectif
func (s *GoalService) Update(ctx context.Context, actor domain.Actor, id int64, patch domain.GoalPatch) (*domain.Goal, error) {
	return s.change(ctx, actor, id, "update", func(goal *domain.Goal) error {
		in := patch.Merge(goal)
		if err := in.Validate(); err != nil {
			return err
		}
		goal.Title = in.Title
		goal.Description = in.Description
		goal.TargetDate = in.TargetDate
		goal.Unit = in.Unit
		goal.Retarget(in.TargetAmount, time.Now().UTC())
		return nil
	})
}

// Complete marks a goal done / Marque un objectif comme atteint
func (s *GoalService) Complete(ctx context.Context, actor domain.Actor, id int64) (*domain.Goal, error) {
	return s.change(ctx, actor, id, "complete", func(goal *domain.Goal) error {
		goal.Complete(time.Now().UTC())
		return nil
	})
}

// Reopen clears completion / Rouvre un objectif
func (s *GoalService) Reopen(ctx context.Context, actor domain.Actor, id int64) (*domain.Goal, error) {
	return s.change(ctx, actor, id, "reopen", func(goal *domain.Goal) error {
		goal.Reopen()
		return nil
	})
}

// AddProgress adds an amount, progress never drops below zero / Ajoute un montant, jamais sous zéro
func (s *GoalService) AddProgress(ctx context.Context, actor domain.Actor, id int64, amount decimal.Decimal) (*domain.Goal, error) {
	return s.change(ctx, actor, id, "progress", func(goal *domain.Goal) error {
		goal.AddProgress(amount, time.Now().UTC())
		return nil
	})
}

func (s *GoalService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	goal, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.access.CanModify(ctx, actor, goal.Owner.ID); err != nil {
		return err
	}
	if err := s.goals.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete goal", "goal_id", id)
	}

	s.written("goal", "delete")
	s.invalidate(ctx, goal.Owner.ID)
	s.publish(ctx, domain.ActivityGoalDeleted, actor.ID, id, nil)
	return nil
}

func (s *GoalService) List(ctx context.Context, filter domain.GoalFilter) ([]*domain.Goal, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, domain.NewValidationError("status", "status must be open or completed")
	}
	filter.Page = filter.Page.Normalize()
	goals, total, err := s.goals.List(ctx, filter)
	if err != nil {
		return nil, 0, storeError(err, "failed to list goals")
	}
	return goals, total, nil
}

// change loads, authorizes, mutates and stores a goal / Charge, autorise, modifie et enregistre un objectif
func (s *GoalService) change(ctx context.Context, actor domain.Actor, id int64, op string, mutate func(*domain.Goal) error) (*domain.Goal, error) {
	goal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanModify(ctx, actor, goal.Owner.ID); err != nil {
		return nil, err
	}

	wasCompleted := goal.Completed
	if err := mutate(goal); err != nil {
		return nil, err
	}
	if err := s.goals.Update(ctx, goal); err != nil {
		return nil, storeError(err, "failed to update goal", "goal_id", id)
	}

	s.written("goal", op)
	s.invalidate(ctx, goal.Owner.ID)
	kind := domain.ActivityGoalUpdated
	if goal.Completed && !wasCompleted {
		kind = domain.ActivityGoalCompleted
	}
	s.publish(ctx, kind, actor.ID, id, goalPayload(goal))
	return goal, nil
}

func goalPayload(goal *domain.Goal) map[string]any {
	return map[string]any{
		"owner_id":  goal.Owner.ID,
		"progress":  goal.Progress,
		"completed": goal.Completed,
	}
}
