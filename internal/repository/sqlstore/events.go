package sqlstore

import (
	"context"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

var _ ports.EventRepository = (*eventRepository)(nil)

type eventRepository struct {
	store
}

// NewEventRepository creates calendar repository / Crée le repository du calendrier
func NewEventRepository(conn ports.DBTX, dialect Dialect) ports.EventRepository {
	return &eventRepository{store: newStore(conn, dialect)}
}

const eventSelect = `SELECT e.id, e.creator_id, u.display_name AS creator_name, u.avatar_url AS creator_avatar,
	e.title, e.description, e.location, e.starts_at, e.ends_at, e.all_day, e.created_at, e.updated_at
	FROM events e JOIN users u ON u.id = e.creator_id`

type eventRow struct {
	ID            int64      `db:"id"`
	CreatorID     int64      `db:"creator_id"`
	CreatorName   string     `db:"creator_name"`
	CreatorAvatar string     `db:"creator_avatar"`
	Title         string     `db:"title"`
	Description   string     `db:"description"`
	Location      string     `db:"location"`
	StartsAt      time.Time  `db:"starts_at"`
	EndsAt        *time.Time `db:"ends_at"`
	AllDay        bool       `db:"all_day"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (row eventRow) toDomain() *domain.Event {
	return &domain.Event{
		BaseModel:   domain.BaseModel{CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		ID:          row.ID,
		Creator:     domain.UserSummary{ID: row.CreatorID, DisplayName: row.CreatorName, AvatarURL: row.CreatorAvatar},
		Title:       row.Title,
		Description: row.Description,
		Location:    row.Location,
		StartsAt:    row.StartsAt.UTC(),
		EndsAt:      utcPtr(row.EndsAt),
		AllDay:      row.AllDay,
	}
}

func (r *eventRepository) Create(ctx context.Context, creatorID int64, in domain.EventInput) (*domain.Event, error) {
	ts := now()
	id, err := r.insert(ctx,
		`INSERT INTO events (creator_id, title, description, location, starts_at, ends_at, all_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		creatorID, in.Title, in.Description, in.Location, in.StartsAt.UTC(), utcPtr(in.EndsAt), in.AllDay, ts, ts,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	var row eventRow
	if err := r.get(ctx, &row, eventSelect+` WHERE e.id = ?`, id); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	e.UpdatedAt = now()
	return r.execOne(ctx,
		`UPDATE events SET title = ?, description = ?, location = ?, starts_at = ?, ends_at = ?, all_day = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Description, e.Location, e.StartsAt.UTC(), utcPtr(e.EndsAt), e.AllDay, e.UpdatedAt, e.ID,
	)
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM events WHERE id = ?`, id)
}

// List returns entries overlapping [From, To), by start time / Retourne les entrées chevauchant [From, To)
// ends_at is the last instant occupied, so an entry ending exactly on From is listed
// like in Event.Overlaps. All-day ranges are stored as day starts and rely on it.
func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	var w where
	if !filter.From.IsZero() {
		w.add("COALESCE(e.ends_at, e.starts_at) >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		w.add("e.starts_at < ?", filter.To.UTC())
	}
	if filter.CreatorID > 0 {
		w.add("e.creator_id = ?", filter.CreatorID)
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM events e`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []eventRow
	query := eventSelect + w.String() + ` ORDER BY e.starts_at ASC, e.id ASC LIMIT ? OFFSET ?`
	if err := r.selectAll(ctx, &rows, query, append(w.args, page.Limit, page.Offset)...); err != nil {
		return nil, 0, err
	}

	events := make([]*domain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toDomain())
	}
	return events, total, nil
}

func (r *eventRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM events`)
}
