package web

import (
	"net/http"
	"strconv"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/dto"
)

const defaultUpcoming = 5

// ListEvents returns calendar entries in a window / Retourne les entrées du calendrier
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	from, err := queryTime(r, "from")
	if err != nil {
		respondError(w, r, err)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		respondError(w, r, err)
		return
	}
	creatorID, err := queryInt64(r, "creator_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	filter := domain.EventFilter{From: from, To: to, CreatorID: creatorID, Page: pageFromQuery(r)}
	events, total, err := h.container.EventSvc.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.NewList(events, dto.EventToDTO, filter.Page, total))
}

// UpcomingEvents returns the next entries / Retourne les prochaines entrées
func (h *Handler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 || n > domain.MaxPageSize {
		n = defaultUpcoming
	}

	events, err := h.container.EventSvc.Upcoming(r.Context(), n)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.Map(events, dto.EventToDTO))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req dto.EventDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.container.EventSvc.Create(r.Context(), ActorFromContext(r.Context()), req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EventToDTO(event))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	event, err := h.container.EventSvc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.EventToDTO(event))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.EventPatchDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.container.EventSvc.Update(r.Context(), ActorFromContext(r.Context()), id, req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.EventToDTO(event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.container.EventSvc.Delete(r.Context(), ActorFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListGoals returns goals filtered by owner and status / Retourne les objectifs filtrés
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	ownerID, err := queryInt64(r, "owner_id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	filter := domain.GoalFilter{
		OwnerID: ownerID,
		Status:  domain.GoalStatus(r.URL.Query().Get("status")),
		Page:    pageFromQuery(r),
	}
	goals, total, err := h.container.GoalSvc.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.NewList(goals, dto.GoalToDTO, filter.Page, total))
}

func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req dto.GoalDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.container.GoalSvc.Create(r.Context(), ActorFromContext(r.Context()), req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.GoalToDTO(goal))
}

func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	goal, err := h.container.GoalSvc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.GoalToDTO(goal))
}

func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.GoalPatchDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.container.GoalSvc.Update(r.Context(), ActorFromContext(r.Context()), id, req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.GoalToDTO(goal))
}

// CompleteGoal marks a goal done / Marque un objectif comme atteint
func (h *Handler) CompleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	goal, err := h.container.GoalSvc.Complete(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.GoalToDTO(goal))
}

func (h *Handler) ReopenGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	goal, err := h.container.GoalSvc.Reopen(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.GoalToDTO(goal))
}

// AddGoalProgress adds a decimal amount, negative values correct mistakes / Ajoute une quantité décimale
func (h *Handler) AddGoalProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.ProgressDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.container.GoalSvc.AddProgress(r.Context(), ActorFromContext(r.Context()), id, req.Amount)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.GoalToDTO(goal))
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.container.GoalSvc.Delete(r.Context(), ActorFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
