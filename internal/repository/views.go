package repository

import "time"

// Projected row shapes returned by read queries.  These are the only shapes
// that leave the repository layer for public consumption; password and
// refresh token fields are never part of them.

// ChannelProfile is the whitelist projection of a channel page: identity
// fields plus derived subscription counts and the viewer's own flag.
type ChannelProfile struct {
	ID                   uint64 `json:"id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	FullName             string `json:"full_name"`
	AvatarURL            string `json:"avatar_url"`
	CoverImageURL        string `json:"cover_image_url"`
	SubscribersCount     int64  `json:"subscribers_count"`
	ChannelsSubscribedTo int64  `json:"channels_subscribed_to"`
	IsSubscribed         bool   `json:"is_subscribed"`
}

// PublicUser carries the fields of a user that are safe to embed in lists
// and nested owner projections.
type PublicUser struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// VideoListQuery defines filters, sort and pagination for video listings.
// Page is 1-based.  OwnerID of 0 means no ownership filter.
type VideoListQuery struct {
	OwnerID  uint64
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

// VideoListRow is one entry of a paginated listing, with the owner already
// hydrated to public fields.
type VideoListRow struct {
	ID              uint64     `json:"id"`
	Title           string     `json:"title"`
	ThumbnailURL    string     `json:"thumbnail_url"`
	DurationSeconds float64    `json:"duration_seconds"`
	Views           uint64     `json:"views"`
	CreatedAt       time.Time  `json:"created_at"`
	Owner           PublicUser `json:"owner"`
}

// WatchHistoryRow is one watched video with its owner's public fields, the
// two-level join behind GET /v1/history.
type WatchHistoryRow struct {
	VideoID         uint64     `json:"video_id"`
	Title           string     `json:"title"`
	ThumbnailURL    string     `json:"thumbnail_url"`
	DurationSeconds float64    `json:"duration_seconds"`
	Views           uint64     `json:"views"`
	WatchedAt       time.Time  `json:"watched_at"`
	Owner           PublicUser `json:"owner"`
}

// CommentRow is a comment hydrated with its author's public fields.
type CommentRow struct {
	ID        uint64     `json:"id"`
	VideoID   uint64     `json:"video_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Owner     PublicUser `json:"owner"`
}
