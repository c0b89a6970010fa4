package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/dto"
)

// sharePostToDTO fills the share link / Remplit le lien de partage
func (h *Handler) sharePostToDTO(p *domain.SharePost) dto.SharePostDTOResponse {
	out := dto.SharePostToDTO(p)
	out.ShareURL = h.container.SharePostSvc.ShareURL(p)
	return out
}

func (h *Handler) ListSharePosts(w http.ResponseWriter, r *http.Request) {
	authorID, err := queryInt64(r, "author_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	filter := domain.SharePostFilter{
		AuthorID: authorID,
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Page:     pageFromQuery(r),
	}
	posts, total, err := h.container.SharePostSvc.List(r.Context(), ActorFromContext(r.Context()).ID, filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.NewList(posts, h.sharePostToDTO, filter.Page, total))
}

func (h *Handler) CreateSharePost(w http.ResponseWriter, r *http.Request) {
	var req dto.SharePostDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.container.SharePostSvc.Create(r.Context(), ActorFromContext(r.Context()), req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.sharePostToDTO(post))
}

func (h *Handler) GetSharePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	post, err := h.container.SharePostSvc.Get(r.Context(), ActorFromContext(r.Context()).ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, h.sharePostToDTO(post))
}

func (h *Handler) UpdateSharePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.SharePostPatchDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.container.SharePostSvc.Update(r.Context(), ActorFromContext(r.Context()), id, req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, h.sharePostToDTO(post))
}

func (h *Handler) DeleteSharePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.container.SharePostSvc.Delete(r.Context(), ActorFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SharePostQRCode renders the share link as a PNG / Génère le lien de partage en PNG
func (h *Handler) SharePostQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	png, err := h.container.SharePostSvc.QRCode(r.Context(), ActorFromContext(r.Context()).ID, id, size)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
