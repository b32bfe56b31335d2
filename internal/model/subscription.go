package model

import "time"

// Subscription is an edge record linking a subscriber to a channel (both
// are users).  A UNIQUE index on (subscriber_id, channel_id) guarantees at
// most one edge per pair; the toggle operation relies on that constraint
// rather than a read-then-write check.
//
// Fields:
//  ID           – primary key identifier.
//  SubscriberID – the user who follows.
//  ChannelID    – the user being followed.
//  CreatedAt    – when the edge was created.
type Subscription struct {
    ID           uint64    // subscriptions.id
    SubscriberID uint64    // subscriptions.subscriber_id
    ChannelID    uint64    // subscriptions.channel_id
    CreatedAt    time.Time // subscriptions.created_at
}
