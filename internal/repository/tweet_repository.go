package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/videotube/internal/model"
)

// TweetRepo persists short text posts.
type TweetRepo struct{ DB *sql.DB }

func NewTweetRepo(db *sql.DB) *TweetRepo { return &TweetRepo{DB: db} }

func (r *TweetRepo) Create(ctx context.Context, t model.Tweet) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tweets (owner_id, content) VALUES (?,?)", t.OwnerID, t.Content)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *TweetRepo) GetByID(ctx context.Context, id uint64) (model.Tweet, error) {
	var t model.Tweet
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,owner_id,content,created_at,updated_at FROM tweets WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// ListByOwner returns all tweets of a user, newest first.
func (r *TweetRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Tweet, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,owner_id,content,created_at,updated_at FROM tweets WHERE owner_id=? ORDER BY created_at DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Tweet, 0)
	for rows.Next() {
		var t model.Tweet
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateContent replaces the tweet body.  No RowsAffected check: saving
// unchanged content matches the row but changes nothing, and MySQL reports
// changed rows.  Callers verify existence before updating.
func (r *TweetRepo) UpdateContent(ctx context.Context, id uint64, content string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tweets SET content=? WHERE id=?", content, id)
	return err
}

func (r *TweetRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tweets WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
