package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/videotube/internal/model"
)

// UserRepo persists users and the single active refresh token hash that
// lives on the user row.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  Username and email are
// normalized to lowercase; the caller supplies an already-hashed password.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	username := strings.ToLower(strings.TrimSpace(u.Username))
	email := strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, full_name, password_hash, avatar_url, cover_image_url) VALUES (?,?,?,?,?,?)",
		username, email, u.FullName, u.PasswordHash, u.AvatarURL, u.CoverImageURL)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userColumns = "id,username,email,full_name,password_hash,avatar_url,cover_image_url,refresh_token_hash,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.AvatarURL, &u.CoverImageURL, &u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByLogin fetches a user by normalized username or email.  Either field
// may be empty; at least one must be provided by the caller.
func (r *UserRepo) GetByLogin(ctx context.Context, username, email string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE (username=? AND ?<>'') OR (email=? AND ?<>'') LIMIT 1",
		username, username, email, email))
}

// StoreRefresh overwrites the user's refresh token hash.  Overwriting is
// what invalidates any previously issued refresh token for that user.
func (r *UserRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=?", tokenHash, userID)
	return err
}

// ClearRefresh drops the stored refresh token hash.  Clearing an already
// empty field is not an error, which makes logout idempotent.
func (r *UserRepo) ClearRefresh(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=NULL WHERE id=?", userID)
	return err
}

// UpdatePasswordHash replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, userID)
	return err
}

// ChannelProfile resolves a channel by username and computes the derived
// counts plus the viewer's subscription flag in a single round trip.  A
// viewerID of 0 means an anonymous viewer and always yields is_subscribed
// false (no subscription row has subscriber_id 0).
func (r *UserRepo) ChannelProfile(ctx context.Context, username string, viewerID uint64) (ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var p ChannelProfile
	var isSub int
	err := r.DB.QueryRowContext(ctx, `SELECT
			u.id, u.username, u.email, u.full_name, u.avatar_url, u.cover_image_url,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id)    AS subscribers_count,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channels_subscribed_to,
			EXISTS(SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?) AS is_subscribed
		FROM users u WHERE u.username=? LIMIT 1`,
		viewerID, username).Scan(
		&p.ID, &p.Username, &p.Email, &p.FullName, &p.AvatarURL, &p.CoverImageURL,
		&p.SubscribersCount, &p.ChannelsSubscribedTo, &isSub)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.IsSubscribed = isSub == 1
	return p, nil
}
