package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/videotube/internal/model"
)

// VideoRepo persists videos and the per-user watch history.
type VideoRepo struct{ DB *sql.DB }

func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{DB: db} }

// Create inserts a video and returns its ID.
func (r *VideoRepo) Create(ctx context.Context, v model.Video) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO videos (owner_id, title, description, video_url, thumbnail_url, duration_seconds, is_published)
		 VALUES (?,?,?,?,?,?,?)`,
		v.OwnerID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL, v.DurationSeconds, v.IsPublished)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const videoColumns = "id,owner_id,title,description,video_url,thumbnail_url,duration_seconds,views,is_published,created_at,updated_at"

// GetByID fetches a video by id.
func (r *VideoRepo) GetByID(ctx context.Context, id uint64) (model.Video, error) {
	var v model.Video
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE id=? LIMIT 1", id).Scan(
		&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL,
		&v.DurationSeconds, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}

// videoSortColumn whitelists sortable columns.  Anything else falls back to
// created_at so user input can never reach the ORDER BY clause verbatim.
func videoSortColumn(sortBy string) string {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "views":
		return "v.views"
	case "duration":
		return "v.duration_seconds"
	case "title":
		return "v.title"
	default:
		return "v.created_at"
	}
}

// List returns one page of published videos with hydrated owners plus the
// total count.  Skip/limit is pushed into the query; nothing is sliced in
// memory.  Default order is newest first.
func (r *VideoRepo) List(ctx context.Context, q VideoListQuery) ([]VideoListRow, int64, error) {
	where := []string{"v.is_published = 1"}
	args := []any{}
	if q.OwnerID != 0 {
		where = append(where, "v.owner_id = ?")
		args = append(args, q.OwnerID)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := "SELECT COUNT(*) FROM videos v WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "DESC"
	if strings.EqualFold(q.SortDir, "asc") {
		dir = "ASC"
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			v.id, v.title, v.thumbnail_url, v.duration_seconds, v.views, v.created_at,
			u.id, u.username, u.full_name, u.avatar_url
		FROM videos v
		JOIN users u ON u.id = v.owner_id
		WHERE ` + cond + `
		ORDER BY ` + videoSortColumn(q.SortBy) + ` ` + dir + `
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]VideoListRow, 0, limit)
	for rows.Next() {
		var d VideoListRow
		if err := rows.Scan(
			&d.ID, &d.Title, &d.ThumbnailURL, &d.DurationSeconds, &d.Views, &d.CreatedAt,
			&d.Owner.ID, &d.Owner.Username, &d.Owner.FullName, &d.Owner.AvatarURL,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateDetails replaces title, description and thumbnail.  RowsAffected is
// not consulted: MySQL reports changed rows, not matched rows, so an update
// that resubmits identical values would look like a missing row.  Callers
// verify existence before updating.
func (r *VideoRepo) UpdateDetails(ctx context.Context, id uint64, title, description, thumbnailURL string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE videos SET title=?, description=?, thumbnail_url=? WHERE id=?",
		title, description, thumbnailURL, id)
	return err
}

// Delete removes a video; watch history and comments cascade in the schema.
func (r *VideoRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM videos WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetPublished flips the visibility flag.
func (r *VideoRepo) SetPublished(ctx context.Context, id uint64, published bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE videos SET is_published=? WHERE id=?", published, id)
	return err
}

// RecordView bumps the view counter and upserts the watch-history row.
// UNIQUE(user_id, video_id) keeps one row per pair; re-watching only moves
// watched_at forward.
func (r *VideoRepo) RecordView(ctx context.Context, viewerID, videoID uint64) error {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE videos SET views=views+1 WHERE id=?", videoID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO watch_history (user_id, video_id) VALUES (?,?)
		 ON DUPLICATE KEY UPDATE watched_at=NOW()`,
		viewerID, videoID)
	return err
}

// WatchHistory hydrates the user's watched videos newest-first, each with
// the owning user's public fields.
func (r *VideoRepo) WatchHistory(ctx context.Context, userID uint64) ([]WatchHistoryRow, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT
			v.id, v.title, v.thumbnail_url, v.duration_seconds, v.views, w.watched_at,
			u.id, u.username, u.full_name, u.avatar_url
		FROM watch_history w
		JOIN videos v ON v.id = w.video_id
		JOIN users u  ON u.id = v.owner_id
		WHERE w.user_id=?
		ORDER BY w.watched_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]WatchHistoryRow, 0)
	for rows.Next() {
		var d WatchHistoryRow
		if err := rows.Scan(
			&d.VideoID, &d.Title, &d.ThumbnailURL, &d.DurationSeconds, &d.Views, &d.WatchedAt,
			&d.Owner.ID, &d.Owner.Username, &d.Owner.FullName, &d.Owner.AvatarURL,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// requireRow maps a zero-row write to ErrNotFound.  Only DELETE paths use
// it: deleted-row counts are exact, while UPDATE counts only cover rows
// whose values actually changed.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
