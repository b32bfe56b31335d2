// Package queue defines message payloads exchanged over the message broker.
package queue

// VideoPublishedEvent is published when a video upload completes and the
// video becomes visible.  It contains enough information for downstream
// consumers to log, notify subscribers, or feed analytics without querying
// the primary database.
type VideoPublishedEvent struct {
    VideoID         uint64  `json:"video_id"`
    OwnerID         uint64  `json:"owner_id"`
    OwnerUsername   string  `json:"owner_username"`
    Title           string  `json:"title"`
    DurationSeconds float64 `json:"duration_seconds"`
    VideoURL        string  `json:"video_url"`
    PublishedAt     string  `json:"published_at"`
}
