package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

var _ ports.SharePostRepository = (*sharePostRepository)(nil)

type sharePostRepository struct {
	store
}

// NewSharePostRepository creates share post repository / Crée le repository des partages
func NewSharePostRepository(conn ports.DBTX, dialect Dialect) ports.SharePostRepository {
	return &sharePostRepository{store: newStore(conn, dialect)}
}

const sharePostSelect = `SELECT s.id, s.author_id, u.display_name AS author_name, u.avatar_url AS author_avatar,
	s.title, s.description, s.url, s.category, s.created_at, s.updated_at
	FROM share_posts s JOIN users u ON u.id = s.author_id`

type sharePostRow struct {
	ID           int64     `db:"id"`
	AuthorID     int64     `db:"author_id"`
	AuthorName   string    `db:"author_name"`
	AuthorAvatar string    `db:"author_avatar"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	URL          string    `db:"url"`
	Category     string    `db:"category"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row sharePostRow) toDomain() *domain.SharePost {
	return &domain.SharePost{
		BaseModel:   domain.BaseModel{CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		ID:          row.ID,
		Author:      domain.UserSummary{ID: row.AuthorID, DisplayName: row.AuthorName, AvatarURL: row.AuthorAvatar},
		Title:       row.Title,
		Description: row.Description,
		URL:         row.URL,
		Category:    row.Category,
		Reactions:   domain.ReactionCounts{},
	}
}

func (r *sharePostRepository) Create(ctx context.Context, authorID int64, in domain.SharePostInput) (*domain.SharePost, error) {
	ts := now()
	id, err := r.insert(ctx,
		`INSERT INTO share_posts (author_id, title, description, url, category, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		authorID, in.Title, in.Description, in.URL, in.Category, ts, ts,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, authorID)
}

func (r *sharePostRepository) GetByID(ctx context.Context, id, viewerID int64) (*domain.SharePost, error) {
	var row sharePostRow
	if err := r.get(ctx, &row, sharePostSelect+` WHERE s.id = ?`, id); err != nil {
		return nil, err
	}
	posts := []*domain.SharePost{row.toDomain()}
	if err := r.attach(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	return posts[0], nil
}

func (r *sharePostRepository) Update(ctx context.Context, s *domain.SharePost) error {
	s.UpdatedAt = now()
	return r.execOne(ctx,
		`UPDATE share_posts SET title = ?, description = ?, url = ?, category = ?, updated_at = ? WHERE id = ?`,
		s.Title, s.Description, s.URL, s.Category, s.UpdatedAt, s.ID,
	)
}

func (r *sharePostRepository) Delete(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx store) error {
		if err := tx.clearTarget(ctx, domain.TargetSharePost, id); err != nil {
			return err
		}
		return tx.execOne(ctx, `DELETE FROM share_posts WHERE id = ?`, id)
	})
}

func (r *sharePostRepository) List(ctx context.Context, filter domain.SharePostFilter, viewerID int64) ([]*domain.SharePost, int, error) {
	var w where
	if filter.AuthorID > 0 {
		w.add("s.author_id = ?", filter.AuthorID)
	}
	if c := strings.ToLower(strings.TrimSpace(filter.Category)); c != "" {
		w.add("s.category = ?", c)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := likePattern(q)
		w.add("(LOWER(s.title) LIKE ? ESCAPE '!' OR LOWER(s.description) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM share_posts s`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []sharePostRow
	query := sharePostSelect + w.String() + ` ORDER BY s.created_at DESC, s.id DESC LIMIT ? OFFSET ?`
	if err := r.selectAll(ctx, &rows, query, append(w.args, page.Limit, page.Offset)...); err != nil {
		return nil, 0, err
	}

	posts := make([]*domain.SharePost, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toDomain())
	}
	if err := r.attach(ctx, posts, viewerID); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *sharePostRepository) GetMany(ctx context.Context, ids []int64, viewerID int64) ([]*domain.SharePost, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := r.in(sharePostSelect+` WHERE s.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []sharePostRow
	if err := r.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.SharePost, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.toDomain()
	}
	posts := make([]*domain.SharePost, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, r.attach(ctx, posts, viewerID)
}

func (r *sharePostRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM share_posts`)
}

func (r *sharePostRepository) attach(ctx context.Context, posts []*domain.SharePost, viewerID int64) error {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	counts, viewer, err := r.decorate(ctx, domain.TargetSharePost, ids, viewerID)
	if err != nil {
		return err
	}
	for _, p := range posts {
		if c, ok := counts[p.ID]; ok {
			p.Reactions = c
		}
		p.Viewer = viewer[p.ID]
	}
	return nil
}
