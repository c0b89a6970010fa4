package web

import (
	"context"
	"net/http"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/dto"
)

// ListHelpRequests returns requests, active ones first / Retourne les demandes, actives en premier
func (h *Handler) ListHelpRequests(w http.ResponseWriter, r *http.Request) {
	requesterID, err := queryInt64(r, "requester_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	helperID, err := queryInt64(r, "helper_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	filter := domain.HelpRequestFilter{
		Status:      domain.HelpStatus(r.URL.Query().Get("status")),
		RequesterID: requesterID,
		HelperID:    helperID,
		Page:        pageFromQuery(r),
	}
	reqs, total, err := h.container.HelpSvc.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.NewList(reqs, dto.HelpRequestToDTO, filter.Page, total))
}

// CreateHelpRequest asks the family for help / Demande de l'aide à la famille
func (h *Handler) CreateHelpRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.HelpRequestDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.container.HelpSvc.Create(r.Context(), ActorFromContext(r.Context()), req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.HelpRequestToDTO(created))
}

func (h *Handler) GetHelpRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	req, err := h.container.HelpSvc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.HelpRequestToDTO(req))
}

func (h *Handler) UpdateHelpRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.HelpRequestPatchDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.container.HelpSvc.Update(r.Context(), ActorFromContext(r.Context()), id, req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.HelpRequestToDTO(updated))
}

func (h *Handler) DeleteHelpRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.container.HelpSvc.Delete(r.Context(), ActorFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type helpTransition func(ctx context.Context, actor domain.Actor, id int64) (*domain.HelpRequest, error)

// HelpTransition returns a handler applying a lifecycle step / Retourne un handler appliquant une étape du cycle de vie
// Invalid steps answer 409.
func (h *Handler) HelpTransition(step string) http.HandlerFunc {
	transitions := map[string]helpTransition{
		"claim":   h.container.HelpSvc.Claim,
		"unclaim": h.container.HelpSvc.Unclaim,
		"resolve": h.container.HelpSvc.Resolve,
		"reopen":  h.container.HelpSvc.Reopen,
	}
	apply, ok := transitions[step]
	if !ok {
		panic("unknown help request transition " + step)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		req, err := apply(r.Context(), ActorFromContext(r.Context()), id)
		if err != nil {
			respondError(w, r, err)
			return
		}

		jsonResponse(w, dto.HelpRequestToDTO(req))
	}
}
