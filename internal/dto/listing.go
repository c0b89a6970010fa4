package dto

import "github.com/Olprog59/go-familyhub/internal/domain"

// PaginationDTO describes a page of results / Décrit une page de résultats
type PaginationDTO struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// ListDTOResponse wraps a page of items / Enveloppe une page d'éléments
type ListDTOResponse[T any] struct {
	Items      []T           `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}

// NewPagination computes page metadata / Calcule les métadonnées de pagination
func NewPagination(page domain.Page, total int) PaginationDTO {
	page = page.Normalize()
	return PaginationDTO{
		Total:      total,
		Page:       page.Number(),
		Limit:      page.Limit,
		TotalPages: (total + page.Limit - 1) / page.Limit, // Ceiling division
	}
}

// NewList converts records into a paginated response / Convertit les enregistrements en réponse paginée
func NewList[S any, T any](items []S, convert func(S) T, page domain.Page, total int) ListDTOResponse[T] {
	return ListDTOResponse[T]{Items: Map(items, convert), Pagination: NewPagination(page, total)}
}

// Map converts a slice, never returning nil / Convertit une slice, jamais nil
func Map[S any, T any](items []S, convert func(S) T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return out
}
