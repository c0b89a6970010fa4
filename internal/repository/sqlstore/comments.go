package sqlstore

import (
	"context"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

var _ ports.CommentRepository = (*commentRepository)(nil)

type commentRepository struct {
	store
}

// NewCommentRepository creates comment repository / Crée le repository des commentaires
func NewCommentRepository(conn ports.DBTX, dialect Dialect) ports.CommentRepository {
	return &commentRepository{store: newStore(conn, dialect)}
}

const commentSelect = `SELECT c.id, c.post_id, c.author_id, u.display_name AS author_name, u.avatar_url AS author_avatar,
	c.content, c.created_at, c.updated_at
	FROM comments c JOIN users u ON u.id = c.author_id`

type commentRow struct {
	ID           int64     `db:"id"`
	PostID       int64     `db:"post_id"`
	AuthorID     int64     `db:"author_id"`
	AuthorName   string    `db:"author_name"`
	AuthorAvatar string    `db:"author_avatar"`
	Content      string    `db:"content"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row commentRow) toDomain() *domain.Comment {
	return &domain.Comment{
		BaseModel: domain.BaseModel{CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		ID:        row.ID,
		PostID:    row.PostID,
		Author:    domain.UserSummary{ID: row.AuthorID, DisplayName: row.AuthorName, AvatarURL: row.AuthorAvatar},
		Content:   row.Content,
	}
}

func (r *commentRepository) Create(ctx context.Context, postID, authorID int64, in domain.CommentInput) (*domain.Comment, error) {
	ts := now()
	id, err := r.insert(ctx,
		`INSERT INTO comments (post_id, author_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		postID, authorID, in.Content, ts, ts,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var row commentRow
	if err := r.get(ctx, &row, commentSelect+` WHERE c.id = ?`, id); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	comment.UpdatedAt = now()
	return r.execOne(ctx, `UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		comment.Content, comment.UpdatedAt, comment.ID)
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM comments WHERE id = ?`, id)
}

// ListByPost returns comments oldest first / Retourne les commentaires du plus ancien au plus récent
func (r *commentRepository) ListByPost(ctx context.Context, postID int64, page domain.Page) ([]*domain.Comment, int, error) {
	total, err := r.count(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID)
	if err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var rows []commentRow
	query := commentSelect + ` WHERE c.post_id = ? ORDER BY c.created_at ASC, c.id ASC LIMIT ? OFFSET ?`
	if err := r.selectAll(ctx, &rows, query, postID, page.Limit, page.Offset); err != nil {
		return nil, 0, err
	}

	comments := make([]*domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toDomain())
	}
	return comments, total, nil
}
