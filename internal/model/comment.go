package model

import "time"

// Comment is a user comment attached to a video.
//
// Fields:
//  ID        – primary key identifier.
//  VideoID   – video the comment belongs to.
//  OwnerID   – author of the comment.
//  Content   – comment body.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Comment struct {
    ID        uint64    // comments.id
    VideoID   uint64    // comments.video_id
    OwnerID   uint64    // comments.owner_id
    Content   string    // comments.content
    CreatedAt time.Time // comments.created_at
    UpdatedAt time.Time // comments.updated_at
}
