package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus filters goals by completion / Filtre les objectifs par état
type GoalStatus string

const (
	GoalOpen      GoalStatus = "open"
	GoalCompleted GoalStatus = "completed"
)

// IsValid checks goal status / Vérifie l'état d'objectif
func (s GoalStatus) IsValid() bool {
	return s == GoalOpen || s == GoalCompleted
}

// Goal is a personal objective shared with the family / Objectif personnel partagé avec la famille
type Goal struct {
	BaseModel
	ID           int64
	Owner        UserSummary
	Title        string
	Description  string
	TargetDate   *time.Time
	TargetAmount decimal.NullDecimal
	Progress     decimal.Decimal
	Unit         string
	Completed    bool
	CompletedAt  *time.Time
}

// ProgressPercent returns progress against target, capped at 100 / Retourne l'avancement plafonné à 100
func (g *Goal) ProgressPercent() (decimal.Decimal, bool) {
	if !g.TargetAmount.Valid || !g.TargetAmount.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	pct := g.Progress.Div(g.TargetAmount.Decimal).Mul(decimal.NewFromInt(100)).Round(2)
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	return pct, true
}

// AddProgress adds an amount, floors at zero and completes on target / Ajoute un montant, plancher à zéro, termine à la cible
func (g *Goal) AddProgress(amount decimal.Decimal, now time.Time) {
	g.Progress = g.Progress.Add(amount)
	if g.Progress.IsNegative() {
		g.Progress = decimal.Zero
	}
	if g.TargetAmount.Valid && g.TargetAmount.Decimal.IsPositive() && g.Progress.GreaterThanOrEqual(g.TargetAmount.Decimal) {
		g.Complete(now)
	}
}

// Retarget sets the target amount. Only a changed target can complete the goal,
// so a reopened goal stays open through other edits.
// Seul un changement de cible peut terminer l'objectif.
func (g *Goal) Retarget(target decimal.NullDecimal, now time.Time) {
	same := target.Valid == g.TargetAmount.Valid && (!target.Valid || target.Decimal.Equal(g.TargetAmount.Decimal))
	g.TargetAmount = target
	if !same {
		g.AddProgress(decimal.Zero, now)
	}
}

// Complete marks goal done / Marque l'objectif comme atteint
func (g *Goal) Complete(now time.Time) {
	if g.Completed {
		return
	}
	g.Completed = true
	g.CompletedAt = &now
}

// Reopen clears completion / Efface l'achèvement
func (g *Goal) Reopen() {
	g.Completed = false
	g.CompletedAt = nil
}

// GoalInput holds goal fields / Champs d'un objectif
type GoalInput struct {
	Title        string
	Description  string
	TargetDate   *time.Time
	TargetAmount decimal.NullDecimal
	Progress     decimal.Decimal
	Unit         string
}

// Normalize trims input / Nettoie la saisie
func (in *GoalInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.TargetDate != nil {
		d := truncateDay(in.TargetDate.UTC())
		in.TargetDate = &d
	}
}

// Validate checks goal fields / Vérifie les champs de l'objectif
func (in GoalInput) Validate() error {
	var v validator
	v.required("title", in.Title)
	v.maxLen("title", in.Title, MaxTitleLength)
	v.maxLen("description", in.Description, MaxDescriptionLength)
	v.maxLen("unit", in.Unit, MaxUnitLength)
	if in.TargetAmount.Valid && in.TargetAmount.Decimal.IsNegative() {
		v.add("target_amount", "target_amount must not be negative")
	}
	if in.Progress.IsNegative() {
		v.add("progress", "progress must not be negative")
	}
	return v.err()
}

// GoalPatch is a partial goal change / Modification partielle d'un objectif
type GoalPatch struct {
	Title             *string
	Description       *string
	TargetDate        *time.Time
	ClearTargetDate   bool
	TargetAmount      *decimal.Decimal
	ClearTargetAmount bool
	Unit              *string
}

// Merge produces the full input after the patch / Produit la saisie complète après modification
func (p GoalPatch) Merge(g *Goal) GoalInput {
	in := GoalInput{
		Title:        g.Title,
		Description:  g.Description,
		TargetDate:   g.TargetDate,
		TargetAmount: g.TargetAmount,
		Progress:     g.Progress,
		Unit:         g.Unit,
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.ClearTargetDate {
		in.TargetDate = nil
	} else if p.TargetDate != nil {
		in.TargetDate = p.TargetDate
	}
	if p.ClearTargetAmount {
		in.TargetAmount = decimal.NullDecimal{}
	} else if p.TargetAmount != nil {
		in.TargetAmount = decimal.NewNullDecimal(*p.TargetAmount)
	}
	if p.Unit != nil {
		in.Unit = *p.Unit
	}
	in.Normalize()
	return in
}

// GoalFilter narrows goal listings / Filtre les listes d'objectifs
type GoalFilter struct {
	OwnerID int64
	Status  GoalStatus
	Page    Page
}
