package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
)

var _ ports.ReactionRepository = (*reactionRepository)(nil)

// targetTables maps reactable types to their table / Associe les types réagissables à leur table
var targetTables = map[domain.TargetType]string{
	domain.TargetPost:      "posts",
	domain.TargetSharePost: "share_posts",
}

// reactionRepository implements ReactionRepository / Implémente ReactionRepository
type reactionRepository struct {
	store
}

// NewReactionRepository creates reaction repository / Crée le repository des réactions
func NewReactionRepository(conn ports.DBTX, dialect Dialect) ports.ReactionRepository {
	return &reactionRepository{store: newStore(conn, dialect)}
}

func tableFor(t domain.TargetType) (string, error) {
	table, ok := targetTables[t]
	if !ok {
		return "", fmt.Errorf("unknown target type %q", t)
	}
	return table, nil
}

// Exists checks that the target exists / Vérifie que la cible existe
func (r *reactionRepository) Exists(ctx context.Context, target domain.Target) (bool, error) {
	table, err := tableFor(target.Type)
	if err != nil {
		return false, err
	}
	n, err := r.count(ctx, `SELECT COUNT(*) FROM `+table+` WHERE id = ?`, target.ID)
	return n > 0, err
}

// AddReaction records a reaction once / Enregistre une réaction une seule fois
func (r *reactionRepository) AddReaction(ctx context.Context, target domain.Target, userID int64, kind domain.ReactionKind) (bool, error) {
	query := r.dialect.InsertIgnore + ` reactions (target_type, target_id, user_id, kind, created_at) VALUES (?, ?, ?, ?, ?)` + r.dialect.ConflictSuffix
	return r.execChanged(ctx, query, string(target.Type), target.ID, userID, string(kind), now())
}

// RemoveReaction deletes a reaction / Supprime une réaction
func (r *reactionRepository) RemoveReaction(ctx context.Context, target domain.Target, userID int64, kind domain.ReactionKind) (bool, error) {
	return r.execChanged(ctx,
		`DELETE FROM reactions WHERE target_type = ? AND target_id = ? AND user_id = ? AND kind = ?`,
		string(target.Type), target.ID, userID, string(kind),
	)
}

// Counts totals reactions per kind / Totalise les réactions par type
func (r *reactionRepository) Counts(ctx context.Context, target domain.Target) (domain.ReactionCounts, error) {
	counts, _, err := r.decorate(ctx, target.Type, []int64{target.ID}, 0)
	if err != nil {
		return nil, err
	}
	if c, ok := counts[target.ID]; ok {
		return c, nil
	}
	return domain.ReactionCounts{}, nil
}

// AddBookmark saves a record once / Sauvegarde un enregistrement une seule fois
func (r *reactionRepository) AddBookmark(ctx context.Context, target domain.Target, userID int64) (bool, error) {
	query := r.dialect.InsertIgnore + ` bookmarks (target_type, target_id, user_id, created_at) VALUES (?, ?, ?, ?)` + r.dialect.ConflictSuffix
	return r.execChanged(ctx, query, string(target.Type), target.ID, userID, now())
}

// RemoveBookmark deletes a bookmark / Supprime un favori
func (r *reactionRepository) RemoveBookmark(ctx context.Context, target domain.Target, userID int64) (bool, error) {
	return r.execChanged(ctx,
		`DELETE FROM bookmarks WHERE target_type = ? AND target_id = ? AND user_id = ?`,
		string(target.Type), target.ID, userID,
	)
}

// ListBookmarks returns a member's bookmarks, newest first / Retourne les favoris d'un membre
func (r *reactionRepository) ListBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error) {
	var rows []struct {
		TargetType string    `db:"target_type"`
		TargetID   int64     `db:"target_id"`
		UserID     int64     `db:"user_id"`
		CreatedAt  time.Time `db:"created_at"`
	}
	err := r.selectAll(ctx, &rows,
		`SELECT target_type, target_id, user_id, created_at FROM bookmarks WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	bookmarks := make([]domain.Bookmark, 0, len(rows))
	for _, row := range rows {
		bookmarks = append(bookmarks, domain.Bookmark{
			Target:    domain.Target{Type: domain.TargetType(row.TargetType), ID: row.TargetID},
			UserID:    row.UserID,
			CreatedAt: row.CreatedAt,
		})
	}
	return bookmarks, nil
}

// decorate loads reaction counts and viewer state for many targets / Charge compteurs et état du lecteur
func (s store) decorate(ctx context.Context, kind domain.TargetType, ids []int64, viewerID int64) (map[int64]domain.ReactionCounts, map[int64]domain.ViewerState, error) {
	counts := make(map[int64]domain.ReactionCounts, len(ids))
	viewer := make(map[int64]domain.ViewerState, len(ids))
	if len(ids) == 0 {
		return counts, viewer, nil
	}

	query, args, err := s.in(
		`SELECT target_id, kind, COUNT(*) AS total FROM reactions
		WHERE target_type = ? AND target_id IN (?)
		GROUP BY target_id, kind`,
		string(kind), ids,
	)
	if err != nil {
		return nil, nil, err
	}
	var totals []struct {
		TargetID int64  `db:"target_id"`
		Kind     string `db:"kind"`
		Total    int    `db:"total"`
	}
	if err := s.selectAll(ctx, &totals, query, args...); err != nil {
		return nil, nil, err
	}
	for _, t := range totals {
		if counts[t.TargetID] == nil {
			counts[t.TargetID] = domain.ReactionCounts{}
		}
		counts[t.TargetID][domain.ReactionKind(t.Kind)] = t.Total
	}

	if viewerID == 0 {
		return counts, viewer, nil
	}

	query, args, err = s.in(
		`SELECT target_id, kind FROM reactions
		WHERE target_type = ? AND user_id = ? AND target_id IN (?)
		ORDER BY kind`,
		string(kind), viewerID, ids,
	)
	if err != nil {
		return nil, nil, err
	}
	var mine []struct {
		TargetID int64  `db:"target_id"`
		Kind     string `db:"kind"`
	}
	if err := s.selectAll(ctx, &mine, query, args...); err != nil {
		return nil, nil, err
	}
	for _, m := range mine {
		state := viewer[m.TargetID]
		state.Reactions = append(state.Reactions, domain.ReactionKind(m.Kind))
		viewer[m.TargetID] = state
	}

	query, args, err = s.in(
		`SELECT target_id FROM bookmarks WHERE target_type = ? AND user_id = ? AND target_id IN (?)`,
		string(kind), viewerID, ids,
	)
	if err != nil {
		return nil, nil, err
	}
	var saved []int64
	if err := s.selectAll(ctx, &saved, query, args...); err != nil {
		return nil, nil, err
	}
	for _, id := range saved {
		state := viewer[id]
		state.Bookmarked = true
		viewer[id] = state
	}

	return counts, viewer, nil
}

// clearTarget removes side-table rows of a deleted record / Supprime les lignes annexes d'un enregistrement
func (s store) clearTarget(ctx context.Context, kind domain.TargetType, id int64) error {
	if _, err := s.exec(ctx, `DELETE FROM reactions WHERE target_type = ? AND target_id = ?`, string(kind), id); err != nil {
		return err
	}
	_, err := s.exec(ctx, `DELETE FROM bookmarks WHERE target_type = ? AND target_id = ?`, string(kind), id)
	return err
}
