package ports

import (
	"context"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
)

// PostRepository persists feed posts / Persiste les posts du fil
type PostRepository interface {
	Create(ctx context.Context, authorID int64, in domain.PostInput) (*domain.Post, error)
	// GetByID loads a post with counts and viewer state / Charge un post avec compteurs et état du lecteur
	GetByID(ctx context.Context, id, viewerID int64) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.PostFilter, viewerID int64) ([]*domain.Post, int, error)
	// GetMany loads posts by id in the given order / Charge des posts par id dans l'ordre donné
	GetMany(ctx context.Context, ids []int64, viewerID int64) ([]*domain.Post, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository persists post comments / Persiste les commentaires
type CommentRepository interface {
	Create(ctx context.Context, postID, authorID int64, in domain.CommentInput) (*domain.Comment, error)
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id int64) error
	// ListByPost returns comments oldest first / Retourne les commentaires du plus ancien au plus récent
	ListByPost(ctx context.Context, postID int64, page domain.Page) ([]*domain.Comment, int, error)
}

// EventRepository persists calendar entries / Persiste les entrées du calendrier
type EventRepository interface {
	Create(ctx context.Context, creatorID int64, in domain.EventInput) (*domain.Event, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id int64) error
	// List returns entries overlapping the filter window by start time / Retourne les entrées chevauchant la fenêtre
	List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error)
	Count(ctx context.Context) (int, error)
}

// GoalRepository persists goals / Persiste les objectifs
type GoalRepository interface {
	Create(ctx context.Context, ownerID int64, in domain.GoalInput) (*domain.Goal, error)
	GetByID(ctx context.Context, id int64) (*domain.Goal, error)
	Update(ctx context.Context, goal *domain.Goal) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.GoalFilter) ([]*domain.Goal, int, error)
	Count(ctx context.Context) (int, error)
}

// HelpRequestRepository persists help requests / Persiste les demandes d'aide
type HelpRequestRepository interface {
	Create(ctx context.Context, requesterID int64, in domain.HelpRequestInput) (*domain.HelpRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.HelpRequest, error)
	// Update stores req only while the stored status is still from, ErrStale otherwise
	Update(ctx context.Context, req *domain.HelpRequest, from domain.HelpStatus) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.HelpRequestFilter) ([]*domain.HelpRequest, int, error)
	// ExpireOverdue moves open requests needed before cutoff to expired / Passe en expiré les demandes ouvertes dépassées
	ExpireOverdue(ctx context.Context, cutoff time.Time) ([]int64, error)
	Count(ctx context.Context) (int, error)
}

// SharePostRepository persists share posts / Persiste les partages
type SharePostRepository interface {
	Create(ctx context.Context, authorID int64, in domain.SharePostInput) (*domain.SharePost, error)
	GetByID(ctx context.Context, id, viewerID int64) (*domain.SharePost, error)
	Update(ctx context.Context, post *domain.SharePost) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.SharePostFilter, viewerID int64) ([]*domain.SharePost, int, error)
	GetMany(ctx context.Context, ids []int64, viewerID int64) ([]*domain.SharePost, error)
	Count(ctx context.Context) (int, error)
}

// ReactionRepository persists reactions and bookmarks / Persiste les réactions et favoris
type ReactionRepository interface {
	// Exists checks that the target record exists / Vérifie que la cible existe
	Exists(ctx context.Context, target domain.Target) (bool, error)
	// AddReaction is idempotent / Idempotent
	AddReaction(ctx context.Context, target domain.Target, userID int64, kind domain.ReactionKind) (bool, error)
	RemoveReaction(ctx context.Context, target domain.Target, userID int64, kind domain.ReactionKind) (bool, error)
	Counts(ctx context.Context, target domain.Target) (domain.ReactionCounts, error)
	AddBookmark(ctx context.Context, target domain.Target, userID int64) (bool, error)
	RemoveBookmark(ctx context.Context, target domain.Target, userID int64) (bool, error)
	ListBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error)
}
