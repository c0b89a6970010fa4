package web

import (
	"net/http"
	"strings"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/dto"
)

// ListPosts returns the family feed / Retourne le fil familial
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	viewer := ActorFromContext(r.Context())

	authorID, err := queryInt64(r, "author_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	filter := domain.PostFilter{
		AuthorID: authorID,
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Page:     pageFromQuery(r),
	}
	if r.URL.Query().Get("bookmarked") == "true" {
		filter.BookmarkedBy = viewer.ID
	}

	posts, total, err := h.container.PostSvc.List(r.Context(), viewer.ID, filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.NewList(posts, dto.PostToDTO, filter.Page, total))
}

// CreatePost publishes a post / Publie un post
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req dto.PostDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.container.PostSvc.Create(r.Context(), ActorFromContext(r.Context()), req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PostToDTO(post))
}

// GetPost returns one post / Retourne un post
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	post, err := h.container.PostSvc.Get(r.Context(), ActorFromContext(r.Context()).ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.PostToDTO(post))
}

// UpdatePost edits a post, author or moderator / Modifie un post, auteur ou modérateur
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.PostPatchDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.container.PostSvc.Update(r.Context(), ActorFromContext(r.Context()), id, req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.PostToDTO(post))
}

// DeletePost removes a post / Supprime un post
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.container.PostSvc.Delete(r.Context(), ActorFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListComments returns a post's comments, oldest first / Retourne les commentaires d'un post
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r)
	if !ok {
		return
	}
	page := pageFromQuery(r)

	comments, total, err := h.container.CommentSvc.List(r.Context(), ActorFromContext(r.Context()).ID, postID, page)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.NewList(comments, dto.CommentToDTO, page, total))
}

// AddComment replies under a post / Répond sous un post
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.CommentDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.container.CommentSvc.Add(r.Context(), ActorFromContext(r.Context()), postID, req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CommentToDTO(comment))
}

// UpdateComment edits a comment / Modifie un commentaire
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.CommentDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.container.CommentSvc.Update(r.Context(), ActorFromContext(r.Context()), id, req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.CommentToDTO(comment))
}

// DeleteComment removes a comment / Supprime un commentaire
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.container.CommentSvc.Delete(r.Context(), ActorFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// React returns a handler adding a reaction to a target type / Retourne un handler qui ajoute une réaction
// PUT adds, DELETE removes.
func (h *Handler) React(targetType domain.TargetType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		target := domain.Target{Type: targetType, ID: id}
		kind := domain.ReactionKind(r.PathValue("kind"))
		actor := ActorFromContext(r.Context())

		var (
			counts domain.ReactionCounts
			err    error
		)
		if r.Method == http.MethodDelete {
			counts, err = h.container.ReactionSvc.Unreact(r.Context(), actor, target, kind)
		} else {
			counts, err = h.container.ReactionSvc.React(r.Context(), actor, target, kind)
		}
		if err != nil {
			respondError(w, r, err)
			return
		}

		jsonResponse(w, dto.ReactionsToDTO(counts))
	}
}

// Bookmark returns a handler saving or unsaving a target / Retourne un handler qui ajoute ou retire un favori
func (h *Handler) Bookmark(targetType domain.TargetType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		target := domain.Target{Type: targetType, ID: id}
		actor := ActorFromContext(r.Context())

		var err error
		if r.Method == http.MethodDelete {
			err = h.container.ReactionSvc.Unbookmark(r.Context(), actor, target)
		} else {
			err = h.container.ReactionSvc.Bookmark(r.Context(), actor, target)
		}
		if err != nil {
			respondError(w, r, err)
			return
		}

		jsonResponse(w, map[string]bool{"bookmarked": r.Method != http.MethodDelete})
	}
}
