package model

import "time"

// Video represents a published or draft video in the `videos` table.
// Ownership is set at creation time and never changes.
//
// Fields:
//  ID              – primary key identifier.
//  OwnerID         – user who uploaded the video.
//  Title           – video title.
//  Description     – free-form description.
//  VideoURL        – durable URL of the video file in object storage.
//  ThumbnailURL    – durable URL of the thumbnail image.
//  DurationSeconds – media duration reported by the storage layer.
//  Views           – monotonically increasing view counter.
//  IsPublished     – whether the video is visible to non-owners.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Video struct {
    ID              uint64    // videos.id
    OwnerID         uint64    // videos.owner_id
    Title           string    // videos.title
    Description     string    // videos.description
    VideoURL        string    // videos.video_url
    ThumbnailURL    string    // videos.thumbnail_url
    DurationSeconds float64   // videos.duration_seconds
    Views           uint64    // videos.views
    IsPublished     bool      // videos.is_published
    CreatedAt       time.Time // videos.created_at
    UpdatedAt       time.Time // videos.updated_at
}

// WatchHistoryEntry records that a user watched a video.  A UNIQUE index on
// (user_id, video_id) keeps one row per pair; re-watching bumps WatchedAt.
type WatchHistoryEntry struct {
    ID        uint64    // watch_history.id
    UserID    uint64    // watch_history.user_id
    VideoID   uint64    // watch_history.video_id
    WatchedAt time.Time // watch_history.watched_at
}
