package dto

import (
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/shopspring/decimal"
)

// EventDTOReq is DTO for calendar entries / Est le DTO des entrées du calendrier
type EventDTOReq struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	AllDay      bool       `json:"all_day"`
}

// ToDomain converts the request / Convertit la requête
func (r EventDTOReq) ToDomain() domain.EventInput {
	return domain.EventInput{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
		AllDay:      r.AllDay,
	}
}

// EventPatchDTOReq is a partial calendar change / Modification partielle d'une entrée
type EventPatchDTOReq struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	ClearEndsAt bool       `json:"clear_ends_at"`
	AllDay      *bool      `json:"all_day"`
}

// ToDomain converts the request / Convertit la requête
func (r EventPatchDTOReq) ToDomain() domain.EventPatch {
	return domain.EventPatch{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
		ClearEndsAt: r.ClearEndsAt,
		AllDay:      r.AllDay,
	}
}

// EventDTOResponse is a calendar entry / Entrée du calendrier
type EventDTOResponse struct {
	ID          int64          `json:"id"`
	Creator     UserSummaryDTO `json:"creator"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	StartsAt    time.Time      `json:"starts_at"`
	EndsAt      *time.Time     `json:"ends_at,omitempty"`
	AllDay      bool           `json:"all_day"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// EventToDTO converts domain.Event / Convertit domain.Event
func EventToDTO(e *domain.Event) EventDTOResponse {
	return EventDTOResponse{
		ID:          e.ID,
		Creator:     SummaryToDTO(e.Creator),
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		AllDay:      e.AllDay,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// GoalDTOReq is DTO for new goals / Est le DTO des nouveaux objectifs
type GoalDTOReq struct {
	Title        string              `json:"title"`
	Description  string              `json:"description,omitempty"`
	TargetDate   *Date               `json:"target_date,omitempty"`
	TargetAmount decimal.NullDecimal `json:"target_amount"`
	Progress     decimal.Decimal     `json:"progress"`
	Unit         string              `json:"unit,omitempty"`
}

// ToDomain converts the request / Convertit la requête
func (r GoalDTOReq) ToDomain() domain.GoalInput {
	return domain.GoalInput{
		Title:        r.Title,
		Description:  r.Description,
		TargetDate:   r.TargetDate.TimePtr(),
		TargetAmount: r.TargetAmount,
		Progress:     r.Progress,
		Unit:         r.Unit,
	}
}

// GoalPatchDTOReq is a partial goal change / Modification partielle d'un objectif
type GoalPatchDTOReq struct {
	Title             *string          `json:"title"`
	Description       *string          `json:"description"`
	TargetDate        *Date            `json:"target_date"`
	ClearTargetDate   bool             `json:"clear_target_date"`
	TargetAmount      *decimal.Decimal `json:"target_amount"`
	ClearTargetAmount bool             `json:"clear_target_amount"`
	Unit              *string          `json:"unit"`
}

// ToDomain converts the request / Convertit la requête
func (r GoalPatchDTOReq) ToDomain() domain.GoalPatch {
	return domain.GoalPatch{
		Title:             r.Title,
		Description:       r.Description,
		TargetDate:        r.TargetDate.TimePtr(),
		ClearTargetDate:   r.ClearTargetDate,
		TargetAmount:      r.TargetAmount,
		ClearTargetAmount: r.ClearTargetAmount,
		Unit:              r.Unit,
	}
}

// ProgressDTOReq adds to a goal / Ajoute à un objectif
type ProgressDTOReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// GoalDTOResponse is a family goal / Objectif familial
type GoalDTOResponse struct {
	ID              int64               `json:"id"`
	Owner           UserSummaryDTO      `json:"owner"`
	Title           string              `json:"title"`
	Description     string              `json:"description,omitempty"`
	TargetDate      *Date               `json:"target_date,omitempty"`
	TargetAmount    decimal.NullDecimal `json:"target_amount"`
	Progress        decimal.Decimal     `json:"progress"`
	ProgressPercent *decimal.Decimal    `json:"progress_percent,omitempty"`
	Unit            string              `json:"unit,omitempty"`
	Completed       bool                `json:"completed"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// GoalToDTO converts domain.Goal / Convertit domain.Goal
func GoalToDTO(g *domain.Goal) GoalDTOResponse {
	out := GoalDTOResponse{
		ID:           g.ID,
		Owner:        SummaryToDTO(g.Owner),
		Title:        g.Title,
		Description:  g.Description,
		TargetDate:   DateFromPtr(g.TargetDate),
		TargetAmount: g.TargetAmount,
		Progress:     g.Progress,
		Unit:         g.Unit,
		Completed:    g.Completed,
		CompletedAt:  g.CompletedAt,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
	if pct, ok := g.ProgressPercent(); ok {
		out.ProgressPercent = &pct
	}
	return out
}

// HelpRequestDTOReq is DTO for new help requests / Est le DTO des nouvelles demandes d'aide
type HelpRequestDTOReq struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	NeededBy    *time.Time `json:"needed_by,omitempty"`
}

// ToDomain converts the request / Convertit la requête
func (r HelpRequestDTOReq) ToDomain() domain.HelpRequestInput {
	return domain.HelpRequestInput{Title: r.Title, Description: r.Description, NeededBy: r.NeededBy}
}

// HelpRequestPatchDTOReq is a partial help request change / Modification partielle d'une demande
type HelpRequestPatchDTOReq struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	NeededBy      *time.Time `json:"needed_by"`
	ClearNeededBy bool       `json:"clear_needed_by"`
}

// ToDomain converts the request / Convertit la requête
func (r HelpRequestPatchDTOReq) ToDomain() domain.HelpRequestPatch {
	return domain.HelpRequestPatch{
		Title:         r.Title,
		Description:   r.Description,
		NeededBy:      r.NeededBy,
		ClearNeededBy: r.ClearNeededBy,
	}
}

// HelpRequestDTOResponse is a request for a hand / Demande de coup de main
type HelpRequestDTOResponse struct {
	ID          int64           `json:"id"`
	Requester   UserSummaryDTO  `json:"requester"`
	Helper      *UserSummaryDTO `json:"helper,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	NeededBy    *time.Time      `json:"needed_by,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HelpRequestToDTO converts domain.HelpRequest / Convertit domain.HelpRequest
func HelpRequestToDTO(h *domain.HelpRequest) HelpRequestDTOResponse {
	out := HelpRequestDTOResponse{
		ID:          h.ID,
		Requester:   SummaryToDTO(h.Requester),
		Title:       h.Title,
		Description: h.Description,
		Status:      string(h.Status),
		NeededBy:    h.NeededBy,
		ResolvedAt:  h.ResolvedAt,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
	if h.Helper != nil {
		helper := SummaryToDTO(*h.Helper)
		out.Helper = &helper
	}
	return out
}
