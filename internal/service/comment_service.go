package service

import (
	"context"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

// CommentService manages replies under posts / Gère les réponses sous les posts
type CommentService struct {
	contentBase
	comments ports.CommentRepository
	posts    ports.PostRepository
}

// NewCommentService creates comment service / Crée le service des commentaires
func NewCommentService(comments ports.CommentRepository, posts ports.PostRepository, deps ContentDeps) *CommentService {
	return &CommentService{contentBase: newContentBase(deps), comments: comments, posts: posts}
}

// Add comments a post / Commente un post
func (s *CommentService) Add(ctx context.Context, actor domain.Actor, postID int64, in domain.CommentInput) (*domain.Comment, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetByID(ctx, postID, actor.ID); err != nil {
		return nil, storeError(err, "failed to load post", "post_id", postID)
	}

	comment, err := s.comments.Create(ctx, postID, actor.ID, in)
	if err != nil {
		return nil, storeError(err, "failed to create comment", "post_id", postID)
	}

	s.written("comment", "create")
	s.publish(ctx, domain.ActivityCommentCreated, actor.ID, comment.ID, map[string]any{"post_id": postID})
	return comment, nil
}

// List returns a post's comments oldest first / Retourne les commentaires du plus ancien au plus récent
func (s *CommentService) List(ctx context.Context, viewerID, postID int64, page domain.Page) ([]*domain.Comment, int, error) {
	if _, err := s.posts.GetByID(ctx, postID, viewerID); err != nil {
		return nil, 0, storeError(err, "failed to load post", "post_id", postID)
	}
	comments, total, err := s.comments.ListByPost(ctx, postID, page.Normalize())
	if err != nil {
		return nil, 0, storeError(err, "failed to list comments", "post_id", postID)
	}
	return comments, total, nil
}

// Update edits a comment / Modifie un commentaire
func (s *CommentService) Update(ctx context.Context, actor domain.Actor, id int64, in domain.CommentInput) (*domain.Comment, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	comment, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanModify(ctx, actor, comment.Author.ID); err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, storeError(err, "failed to update comment", "comment_id", id)
	}

	s.written("comment", "update")
	s.publish(ctx, domain.ActivityCommentUpdated, actor.ID, id, map[string]any{"post_id": comment.PostID})
	return comment, nil
}

// Delete removes a comment / Supprime un commentaire
func (s *CommentService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	comment, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.access.CanModify(ctx, actor, comment.Author.ID); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete comment", "comment_id", id)
	}

	s.written("comment", "delete")
	s.publish(ctx, domain.ActivityCommentDeleted, actor.ID, id, map[string]any{"post_id": comment.PostID})
	return nil
}

func (s *CommentService) get(ctx context.Context, id int64) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load comment", "comment_id", id)
	}
	return comment, nil
}
