package service

import (
	"context"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

// PostService manages the family feed / Gère le fil familial
type PostService struct {
	contentBase
	posts ports.PostRepository
}

// NewPostService creates post service / Crée le service des posts
func NewPostService(posts ports.PostRepository, deps ContentDeps) *PostService {
	return &PostService{contentBase: newContentBase(deps), posts: posts}
}

// Create publishes a new post / Publie un nouveau post
func (s *PostService) Create(ctx context.Context, actor domain.Actor, in domain.PostInput) (*domain.Post, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, actor.ID, in)
	if err != nil {
		return nil, storeError(err, "failed to create post", "user_id", actor.ID)
	}

	s.written("post", "create")
	s.invalidate(ctx, actor.ID)
	s.publish(ctx, domain.ActivityPostCreated, actor.ID, post.ID, map[string]any{"author_id": actor.ID})
	return post, nil
}

// Get loads a post as seen by the viewer / Charge un post vu par le lecteur
func (s *PostService) Get(ctx context.Context, viewerID, id int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, storeError(err, "failed to load post", "post_id", id)
	}
	return post, nil
}

// Update edits a post / Modifie un post
func (s *PostService) Update(ctx context.Context, actor domain.Actor, id int64, patch domain.PostPatch) (*domain.Post, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	post, err := s.Get(ctx, actor.ID, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanModify(ctx, actor, post.Author.ID); err != nil {
		return nil, err
	}

	patch.Apply(post)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, storeError(err, "failed to update post", "post_id", id)
	}

	s.written("post", "update")
	s.publish(ctx, domain.ActivityPostUpdated, actor.ID, post.ID, map[string]any{"author_id": post.Author.ID})
	return post, nil
}

// Delete removes a post with its comments / Supprime un post et ses commentaires
func (s *PostService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	post, err := s.Get(ctx, actor.ID, id)
	if err != nil {
		return err
	}
	if err := s.access.CanModify(ctx, actor, post.Author.ID); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete post", "post_id", id)
	}

	s.written("post", "delete")
	s.invalidate(ctx, post.Author.ID)
	s.publish(ctx, domain.ActivityPostDeleted, actor.ID, id, map[string]any{"author_id": post.Author.ID})
	return nil
}

// List returns posts newest first / Retourne les posts du plus récent au plus ancien
func (s *PostService) List(ctx context.Context, viewerID int64, filter domain.PostFilter) ([]*domain.Post, int, error) {
	filter.Page = filter.Page.Normalize()
	posts, total, err := s.posts.List(ctx, filter, viewerID)
	if err != nil {
		return nil, 0, storeError(err, "failed to list posts")
	}
	return posts, total, nil
}
