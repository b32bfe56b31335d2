package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/videotube/internal/model"
)

// CommentRepo persists comments attached to videos.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

func (r *CommentRepo) Create(ctx context.Context, c model.Comment) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (video_id, owner_id, content) VALUES (?,?,?)",
		c.VideoID, c.OwnerID, c.Content)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	var c model.Comment
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,video_id,owner_id,content,created_at,updated_at FROM comments WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// ListByVideo returns one page of a video's comments, newest first, with
// authors hydrated, plus the total count.
func (r *CommentRepo) ListByVideo(ctx context.Context, videoID uint64, page, pageSize int) ([]CommentRow, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE video_id=?", videoID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT
			c.id, c.video_id, c.content, c.created_at,
			u.id, u.username, u.full_name, u.avatar_url
		FROM comments c
		JOIN users u ON u.id = c.owner_id
		WHERE c.video_id=?
		ORDER BY c.created_at DESC
		LIMIT ? OFFSET ?`, videoID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]CommentRow, 0, pageSize)
	for rows.Next() {
		var d CommentRow
		if err := rows.Scan(&d.ID, &d.VideoID, &d.Content, &d.CreatedAt,
			&d.Owner.ID, &d.Owner.Username, &d.Owner.FullName, &d.Owner.AvatarURL); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateContent replaces the comment body.  No RowsAffected check: saving
// unchanged content matches the row but changes nothing, and MySQL reports
// changed rows.  Callers verify existence before updating.
func (r *CommentRepo) UpdateContent(ctx context.Context, id uint64, content string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET content=? WHERE id=?", content, id)
	return err
}

func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
