package model

import "time"

// Tweet is a short text post owned by a user, independent of any video.
type Tweet struct {
    ID        uint64    // tweets.id
    OwnerID   uint64    // tweets.owner_id
    Content   string    // tweets.content
    CreatedAt time.Time // tweets.created_at
    UpdatedAt time.Time // tweets.updated_at
}
