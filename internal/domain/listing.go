package domain

import "math"

// Pagination bounds / Bornes de pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is an offset/limit window / Fenêtre offset/limit
type Page struct {
	Offset int
	Limit  int
}

// NewPage converts 1-based page numbers into a window / Convertit un numéro de page en fenêtre
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	// Offsets stay within 32 bits whatever ?page= says
	page = min(page, math.MaxInt32/limit)
	return Page{Offset: (page - 1) * limit, Limit: limit}
}

// Normalize applies defaults to a zero page / Applique les valeurs par défaut
func (p Page) Normalize() Page {
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Number returns the 1-based page number / Retourne le numéro de page
func (p Page) Number() int {
	p = p.Normalize()
	return p.Offset/p.Limit + 1
}
