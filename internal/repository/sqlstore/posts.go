package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

var _ ports.PostRepository = (*postRepository)(nil)

// postRepository implements PostRepository / Implémente PostRepository
type postRepository struct {
	store
}

// NewPostRepository creates post repository / Crée le repository des posts
func NewPostRepository(conn ports.DBTX, dialect Dialect) ports.PostRepository {
	return &postRepository{store: newStore(conn, dialect)}
}

const postSelect = `SELECT p.id, p.author_id, u.display_name AS author_name, u.avatar_url AS author_avatar,
	p.content, p.image_url, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
	FROM posts p JOIN users u ON u.id = p.author_id`

type postRow struct {
	ID           int64     `db:"id"`
	AuthorID     int64     `db:"author_id"`
	AuthorName   string    `db:"author_name"`
	AuthorAvatar string    `db:"author_avatar"`
	Content      string    `db:"content"`
	ImageURL     string    `db:"image_url"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	CommentCount int       `db:"comment_count"`
}

func (row postRow) toDomain() *domain.Post {
	return &domain.Post{
		BaseModel:    domain.BaseModel{CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		ID:           row.ID,
		Author:       domain.UserSummary{ID: row.AuthorID, DisplayName: row.AuthorName, AvatarURL: row.AuthorAvatar},
		Content:      row.Content,
		ImageURL:     row.ImageURL,
		CommentCount: row.CommentCount,
		Reactions:    domain.ReactionCounts{},
	}
}

// Create inserts a post / Insère un post
func (r *postRepository) Create(ctx context.Context, authorID int64, in domain.PostInput) (*domain.Post, error) {
	ts := now()
	id, err := r.insert(ctx,
		`INSERT INTO posts (author_id, content, image_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		authorID, in.Content, in.ImageURL, ts, ts,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, authorID)
}

// GetByID loads a post / Charge un post
func (r *postRepository) GetByID(ctx context.Context, id, viewerID int64) (*domain.Post, error) {
	var row postRow
	if err := r.get(ctx, &row, postSelect+` WHERE p.id = ?`, id); err != nil {
		return nil, err
	}
	posts := []*domain.Post{row.toDomain()}
	if err := r.attach(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	return posts[0], nil
}

// Update saves content changes / Enregistre les modifications
func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = now()
	return r.execOne(ctx,
		`UPDATE posts SET content = ?, image_url = ?, updated_at = ? WHERE id = ?`,
		post.Content, post.ImageURL, post.UpdatedAt, post.ID,
	)
}

// Delete removes a post with its comments and side rows / Supprime un post, ses commentaires et lignes annexes
func (r *postRepository) Delete(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx store) error {
		if err := tx.clearTarget(ctx, domain.TargetPost, id); err != nil {
			return err
		}
		if _, err := tx.exec(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
			return err
		}
		return tx.execOne(ctx, `DELETE FROM posts WHERE id = ?`, id)
	})
}

// List returns filtered posts, newest first / Retourne les posts filtrés, du plus récent au plus ancien
func (r *postRepository) List(ctx context.Context, filter domain.PostFilter, viewerID int64) ([]*domain.Post, int, error) {
	var w where
	if filter.AuthorID > 0 {
		w.add("p.author_id = ?", filter.AuthorID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		w.add("LOWER(p.content) LIKE ? ESCAPE '!'", likePattern(q))
	}
	if filter.BookmarkedBy > 0 {
		w.add(`EXISTS (SELECT 1 FROM bookmarks b WHERE b.target_type = ? AND b.target_id = p.id AND b.user_id = ?)`,
			string(domain.TargetPost), filter.BookmarkedBy)
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM posts p`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []postRow
	query := postSelect + w.String() + ` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`
	if err := r.selectAll(ctx, &rows, query, append(w.args, page.Limit, page.Offset)...); err != nil {
		return nil, 0, err
	}

	posts := make([]*domain.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toDomain())
	}
	if err := r.attach(ctx, posts, viewerID); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// GetMany loads posts by id keeping the given order / Charge des posts par id dans l'ordre donné
func (r *postRepository) GetMany(ctx context.Context, ids []int64, viewerID int64) ([]*domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := r.in(postSelect+` WHERE p.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []postRow
	if err := r.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Post, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.toDomain()
	}
	posts := make([]*domain.Post, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, r.attach(ctx, posts, viewerID)
}

// Count returns the number of posts / Retourne le nombre de posts
func (r *postRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts`)
}

func (r *postRepository) attach(ctx context.Context, posts []*domain.Post, viewerID int64) error {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	counts, viewer, err := r.decorate(ctx, domain.TargetPost, ids, viewerID)
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
