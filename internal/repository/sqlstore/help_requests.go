package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/repository/db"
)

var _ ports.HelpRequestRepository = (*helpRequestRepository)(nil)

type helpRequestRepository struct {
	store
}

// NewHelpRequestRepository creates help request repository / Crée le repository des demandes d'aide
func NewHelpRequestRepository(conn ports.DBTX, dialect Dialect) ports.HelpRequestRepository {
	return &helpRequestRepository{store: newStore(conn, dialect)}
}

const helpRequestSelect = `SELECT r.id, r.requester_id, u.display_name AS requester_name, u.avatar_url AS requester_avatar,
	r.helper_id, COALESCE(h.display_name, '') AS helper_name, COALESCE(h.avatar_url, '') AS helper_avatar,
	r.title, r.description, r.status, r.needed_by, r.resolved_at, r.created_at, r.updated_at
	FROM help_requests r
	JOIN users u ON u.id = r.requester_id
	LEFT JOIN users h ON h.id = r.helper_id`

type helpRequestRow struct {
	ID              int64         `db:"id"`
	RequesterID     int64         `db:"requester_id"`
	RequesterName   string        `db:"requester_name"`
	RequesterAvatar string        `db:"requester_avatar"`
	HelperID        sql.NullInt64 `db:"helper_id"`
	HelperName      string        `db:"helper_name"`
	HelperAvatar    string        `db:"helper_avatar"`
	Title           string        `db:"title"`
	Description     string        `db:"description"`
	Status          string        `db:"status"`
	NeededBy        *time.Time    `db:"needed_by"`
	ResolvedAt      *time.Time    `db:"resolved_at"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

func (row helpRequestRow) toDomain() *domain.HelpRequest {
	h := &domain.HelpRequest{
		BaseModel:   domain.BaseModel{CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		ID:          row.ID,
		Requester:   domain.UserSummary{ID: row.RequesterID, DisplayName: row.RequesterName, AvatarURL: row.RequesterAvatar},
		Title:       row.Title,
		Description: row.Description,
		Status:      domain.HelpStatus(row.Status),
		NeededBy:    utcPtr(row.NeededBy),
		ResolvedAt:  utcPtr(row.ResolvedAt),
	}
	if row.HelperID.Valid {
		h.Helper = &domain.UserSummary{ID: row.HelperID.Int64, DisplayName: row.HelperName, AvatarURL: row.HelperAvatar}
	}
	return h
}

func (r *helpRequestRepository) Create(ctx context.Context, requesterID int64, in domain.HelpRequestInput) (*domain.HelpRequest, error) {
	ts := now()
	id, err := r.insert(ctx,
		`INSERT INTO help_requests (requester_id, title, description, status, needed_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		requesterID, in.Title, in.Description, string(domain.HelpOpen), utcPtr(in.NeededBy), ts, ts,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *helpRequestRepository) GetByID(ctx context.Context, id int64) (*domain.HelpRequest, error) {
	var row helpRequestRow
	if err := r.get(ctx, &row, helpRequestSelect+` WHERE r.id = ?`, id); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *helpRequestRepository) Update(ctx context.Context, h *domain.HelpRequest, from domain.HelpStatus) error {
	var helperID sql.NullInt64
	if h.Helper != nil {
		helperID = sql.NullInt64{Int64: h.Helper.ID, Valid: true}
	}
	ts := now()
	changed, err := r.execChanged(ctx,
		`UPDATE help_requests SET title = ?, description = ?, status = ?, helper_id = ?, needed_by = ?, resolved_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		h.Title, h.Description, string(h.Status), helperID, utcPtr(h.NeededBy), utcPtr(h.ResolvedAt), ts, h.ID, string(from),
	)
	if err != nil {
		return err
	}
	if !changed {
		// Gone or moved on / Supprimée ou déjà changée
		n, err := r.count(ctx, `SELECT COUNT(*) FROM help_requests WHERE id = ?`, h.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return db.ErrNoRecord
		}
		return db.ErrStale
	}
	h.UpdatedAt = ts
	return nil
}

func (r *helpRequestRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM help_requests WHERE id = ?`, id)
}

// List returns active requests first, then newest / Retourne d'abord les demandes actives
func (r *helpRequestRepository) List(ctx context.Context, filter domain.HelpRequestFilter) ([]*domain.HelpRequest, int, error) {
	var w where
	if filter.Status != "" {
		w.add("r.status = ?", string(filter.Status))
	}
	if filter.RequesterID > 0 {
		w.add("r.requester_id = ?", filter.RequesterID)
	}
	if filter.HelperID > 0 {
		w.add("r.helper_id = ?", filter.HelperID)
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM help_requests r`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []helpRequestRow
	query := helpRequestSelect + w.String() + `
		ORDER BY CASE r.status WHEN 'open' THEN 0 WHEN 'claimed' THEN 1 ELSE 2 END, r.created_at DESC, r.id DESC
		LIMIT ? OFFSET ?`
	if err := r.selectAll(ctx, &rows, query, append(w.args, page.Limit, page.Offset)...); err != nil {
		return nil, 0, err
	}

	requests := make([]*domain.HelpRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, row.toDomain())
	}
	return requests, total, nil
}

// ExpireOverdue expires open requests needed before cutoff / Expire les demandes ouvertes dépassées
// Each row is re-checked on update, so a request claimed meanwhile is left alone.
func (r *helpRequestRepository) ExpireOverdue(ctx context.Context, cutoff time.Time) ([]int64, error) {
	var expired []int64
	err := r.inTx(ctx, func(tx store) error {
		var due []int64
		if err := tx.selectAll(ctx, &due,
			`SELECT id FROM help_requests WHERE status = ? AND needed_by IS NOT NULL AND needed_by < ? ORDER BY id`,
			string(domain.HelpOpen), cutoff.UTC(),
		); err != nil {
			return err
		}

		ts := now()
		for _, id := range due {
			changed, err := tx.execChanged(ctx,
				`UPDATE help_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
				string(domain.HelpExpired), ts, id, string(domain.HelpOpen),
			)
			if err != nil {
				return err
			}
			if changed {
				expired = append(expired, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func (r *helpRequestRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM help_requests`)
}
