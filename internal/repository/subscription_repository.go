package repository

import (
	"context"
	"database/sql"
)

// SubscriptionRepo manages (subscriber, channel) edges.  The table carries a
// UNIQUE(subscriber_id, channel_id) index; Toggle leans on it instead of a
// check-then-act sequence, so two concurrent toggles cannot produce a
// duplicate edge.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// Toggle deletes the edge if present, otherwise inserts it.  The delete is
// the atomic "unsubscribe if exists" step; when it removes nothing we insert
// and let the unique index arbitrate races.  A duplicate-key failure means a
// concurrent toggle inserted the edge first, so the pair ends up subscribed
// either way.
func (r *SubscriptionRepo) Toggle(ctx context.Context, subscriberID, channelID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM subscriptions WHERE subscriber_id=? AND channel_id=?",
		subscriberID, channelID)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return false, nil // edge removed: unsubscribed
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO subscriptions (subscriber_id, channel_id) VALUES (?,?)",
		subscriberID, channelID)
	if err != nil {
		if isDuplicate(err) {
			return true, nil // lost the race but the edge exists
		}
		return false, err
	}
	return true, nil
}

// Subscribers returns the public identities of everyone following the
// channel, newest first.
func (r *SubscriptionRepo) Subscribers(ctx context.Context, channelID uint64) ([]PublicUser, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT u.id, u.username, u.full_name, u.avatar_url
		FROM subscriptions s
		JOIN users u ON u.id = s.subscriber_id
		WHERE s.channel_id=?
		ORDER BY s.created_at DESC`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPublicUsers(rows)
}

// SubscribedChannels returns the channels the subscriber follows, each
// hydrated with the channel's own public profile fields.
func (r *SubscriptionRepo) SubscribedChannels(ctx context.Context, subscriberID uint64) ([]PublicUser, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT u.id, u.username, u.full_name, u.avatar_url
		FROM subscriptions s
		JOIN users u ON u.id = s.channel_id
		WHERE s.subscriber_id=?
		ORDER BY s.created_at DESC`, subscriberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPublicUsers(rows)
}

func scanPublicUsers(rows *sql.Rows) ([]PublicUser, error) {
	out := make([]PublicUser, 0)
	for rows.Next() {
		var u PublicUser
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.AvatarURL); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
