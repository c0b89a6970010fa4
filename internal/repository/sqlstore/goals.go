package sqlstore

import (
	"context"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/shopspring/decimal"
)

var _ ports.GoalRepository = (*goalRepository)(nil)

type goalRepository struct {
	store
}

// NewGoalRepository creates goal repository / Crée le repository des objectifs
func NewGoalRepository(conn ports.DBTX, dialect Dialect) ports.GoalRepository {
	return &goalRepository{store: newStore(conn, dialect)}
}

const goalSelect = `SELECT g.id, g.owner_id, u.display_name AS owner_name, u.avatar_url AS owner_avatar,
	g.title, g.description, g.target_date, g.target_amount, g.progress, g.unit, g.completed, g.completed_at,
	g.created_at, g.updated_at
	FROM goals g JOIN users u ON u.id = g.owner_id`

type goalRow struct {
	ID           int64               `db:"id"`
	OwnerID      int64               `db:"owner_id"`
	OwnerName    string              `db:"owner_name"`
	OwnerAvatar  string              `db:"owner_avatar"`
	Title        string              `db:"title"`
	Description  string              `db:"description"`
	TargetDate   *time.Time          `db:"target_date"`
	TargetAmount decimal.NullDecimal `db:"target_amount"`
	Progress     decimal.Decimal     `db:"progress"`
	Unit         string              `db:"unit"`
	Completed    bool                `db:"completed"`
	CompletedAt  *time.Time          `db:"completed_at"`
	CreatedAt    time.Time           `db:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at"`
}

func (row goalRow) toDomain() *domain.Goal {
	return &domain.Goal{
		BaseModel:    domain.BaseModel{CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		ID:           row.ID,
		Owner:        domain.UserSummary{ID: row.OwnerID, DisplayName: row.OwnerName, AvatarURL: row.OwnerAvatar},
		Title:        row.Title,
		Description:  row.Description,
		TargetDate:   utcPtr(row.TargetDate),
		TargetAmount: row.TargetAmount,
		Progress:     row.Progress,
		Unit:         row.Unit,
		Completed:    row.Completed,
		CompletedAt:  utcPtr(row.CompletedAt),
	}
}

func (r *goalRepository) Create(ctx context.Context, ownerID int64, in domain.GoalInput) (*domain.Goal, error) {
	ts := now()
	g := &domain.Goal{TargetAmount: in.TargetAmount, Progress: in.Progress}
	g.AddProgress(decimal.Zero, ts)

	id, err := r.insert(ctx,
		`INSERT INTO goals (owner_id, title, description, target_date, target_amount, progress, unit, completed, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ownerID, in.Title, in.Description, utcPtr(in.TargetDate), in.TargetAmount, g.Progress, in.Unit,
		g.Completed, g.CompletedAt, ts, ts,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *goalRepository) GetByID(ctx context.Context, id int64) (*domain.Goal, error) {
	var row goalRow
	if err := r.get(ctx, &row, goalSelect+` WHERE g.id = ?`, id); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *goalRepository) Update(ctx context.Context, g *domain.Goal) error {
	g.UpdatedAt = now()
	return r.execOne(ctx,
		`UPDATE goals SET title = ?, description = ?, target_date = ?, target_amount = ?, progress = ?, unit = ?,
		completed = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		g.Title, g.Description, utcPtr(g.TargetDate), g.TargetAmount, g.Progress, g.Unit,
		g.Completed, utcPtr(g.CompletedAt), g.UpdatedAt, g.ID,
	)
}

func (r *goalRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM goals WHERE id = ?`, id)
}

// List returns goals, open ones by target date first / Retourne les objectifs
func (r *goalRepository) List(ctx context.Context, filter domain.GoalFilter) ([]*domain.Goal, int, error) {
	var w where
	if filter.OwnerID > 0 {
		w.add("g.owner_id = ?", filter.OwnerID)
	}
	switch filter.Status {
	case domain.GoalOpen:
		w.add("g.completed = ?", false)
	case domain.GoalCompleted:
		w.add("g.completed = ?", true)
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM goals g`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []goalRow
	query := goalSelect + w.String() + ` ORDER BY g.completed ASC, g.created_at DESC, g.id DESC LIMIT ? OFFSET ?`
	if err := r.selectAll(ctx, &rows, query, append(w.args, page.Limit, page.Offset)...); err != nil {
		return nil, 0, err
	}

	goals := make([]*domain.Goal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, row.toDomain())
	}
	return goals, total, nil
}

func (r *goalRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM goals`)
}
