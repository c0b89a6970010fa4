package service

import (
	"context"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

// ReactionService manages reactions and bookmarks / Gère les réactions et favoris
type ReactionService struct {
	contentBase
	reactions  ports.ReactionRepository
	posts      ports.PostRepository
	sharePosts ports.SharePostRepository
}

// NewReactionService creates reaction service / Crée le service des réactions
func NewReactionService(
	reactions ports.ReactionRepository,
	posts ports.PostRepository,
	sharePosts ports.SharePostRepository,
	deps ContentDeps,
) *ReactionService {
	return &ReactionService{
		contentBase: newContentBase(deps),
		reactions:   reactions,
		posts:       posts,
		sharePosts:  sharePosts,
	}
}

// React adds a reaction, re-adding is a no-op / Ajoute une réaction, idempotent
func (s *ReactionService) React(ctx context.Context, actor domain.Actor, target domain.Target, kind domain.ReactionKind) (domain.ReactionCounts, error) {
	if err := domain.ValidateReaction(kind); err != nil {
		return nil, err
	}
	if err := s.checkTarget(ctx, target); err != nil {
		return nil, err
	}

	added, err := s.reactions.AddReaction(ctx, target, actor.ID, kind)
	if err != nil {
		return nil, storeError(err, "failed to add reaction", "target", target.Type, "target_id", target.ID)
	}
	if added {
		if s.metrics != nil {
			s.metrics.RecordReaction(string(kind))
		}
		s.publish(ctx, domain.ActivityReactionAdded, actor.ID, target.ID, reactionPayload(target, kind))
	}
	return s.counts(ctx, target)
}

// Unreact removes a reaction / Retire une réaction
func (s *ReactionService) Unreact(ctx context.Context, actor domain.Actor, target domain.Target, kind domain.ReactionKind) (domain.ReactionCounts, error) {
	if err := domain.ValidateReaction(kind); err != nil {
		return nil, err
	}
	if err := s.checkTarget(ctx, target); err != nil {
		return nil, err
	}

	removed, err := s.reactions.RemoveReaction(ctx, target, actor.ID, kind)
	if err != nil {
		return nil, storeError(err, "failed to remove reaction", "target", target.Type, "target_id", target.ID)
	}
	if removed {
		s.publish(ctx, domain.ActivityReactionRemoved, actor.ID, target.ID, reactionPayload(target, kind))
	}
	return s.counts(ctx, target)
}

// Bookmark saves a record for the actor / Sauvegarde un enregistrement
func (s *ReactionService) Bookmark(ctx context.Context, actor domain.Actor, target domain.Target) error {
	if err := s.checkTarget(ctx, target); err != nil {
		return err
	}
	if _, err := s.reactions.AddBookmark(ctx, target, actor.ID); err != nil {
		return storeError(err, "failed to add bookmark", "target", target.Type, "target_id", target.ID)
	}
	return nil
}

// Unbookmark forgets a saved record / Oublie un enregistrement sauvegardé
func (s *ReactionService) Unbookmark(ctx context.Context, actor domain.Actor, target domain.Target) error {
	if err := s.checkTarget(ctx, target); err != nil {
		return err
	}
	if _, err := s.reactions.RemoveBookmark(ctx, target, actor.ID); err != nil {
		return storeError(err, "failed to remove bookmark", "target", target.Type, "target_id", target.ID)
	}
	return nil
}

// ListBookmarks returns saved posts and share posts, latest saved first / Retourne les favoris
func (s *ReactionService) ListBookmarks(ctx context.Context, viewerID int64) (*domain.Bookmarks, error) {
	marks, err := s.reactions.ListBookmarks(ctx, viewerID)
	if err != nil {
		return nil, storeError(err, "failed to list bookmarks", "user_id", viewerID)
	}

	var postIDs, shareIDs []int64
	for _, m := range marks {
		switch m.Target.Type {
		case domain.TargetPost:
			postIDs = append(postIDs, m.Target.ID)
		case domain.TargetSharePost:
			shareIDs = append(shareIDs, m.Target.ID)
		}
	}

	out := &domain.Bookmarks{Posts: []*domain.Post{}, SharePosts: []*domain.SharePost{}}
	if len(postIDs) > 0 {
		if out.Posts, err = s.posts.GetMany(ctx, postIDs, viewerID); err != nil {
			return nil, storeError(err, "failed to load bookmarked posts", "user_id", viewerID)
		}
	}
	if len(shareIDs) > 0 {
		if out.SharePosts, err = s.sharePosts.GetMany(ctx, shareIDs, viewerID); err != nil {
			return nil, storeError(err, "failed to load bookmarked share posts", "user_id", viewerID)
		}
	}
	return out, nil
}

func (s *ReactionService) checkTarget(ctx context.Context, target domain.Target) error {
	if !target.Type.IsValid() {
		return domain.NewValidationError("target", "unknown target type")
	}
	ok, err := s.reactions.Exists(ctx, target)
	if err != nil {
		return storeError(err, "failed to check reaction target", "target", target.Type, "target_id", target.ID)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *ReactionService) counts(ctx context.Context, target domain.Target) (domain.ReactionCounts, error) {
	counts, err := s.reactions.Counts(ctx, target)
	if err != nil {
		return nil, storeError(err, "failed to count reactions", "target", target.Type, "target_id", target.ID)
	}
	return counts, nil
}

func reactionPayload(target domain.Target, kind domain.ReactionKind) map[string]any {
	return map[string]any{"target_type": target.Type, "kind": kind}
}
