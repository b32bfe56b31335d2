package repository

import (
	"context"

	"github.com/iliyamo/videotube/internal/model"
)

// The store interfaces below are what handlers depend on.  The concrete
// MySQL implementations live in this package; tests substitute in-memory
// fakes.

type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByLogin(ctx context.Context, username, email string) (model.User, error)
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string) error
	ClearRefresh(ctx context.Context, userID uint64) error
	UpdatePasswordHash(ctx context.Context, userID uint64, hash string) error
	ChannelProfile(ctx context.Context, username string, viewerID uint64) (ChannelProfile, error)
}

type SubscriptionStore interface {
	// Toggle flips the (subscriber, channel) edge and reports whether the
	// edge exists after the call.
	Toggle(ctx context.Context, subscriberID, channelID uint64) (subscribed bool, err error)
	Subscribers(ctx context.Context, channelID uint64) ([]PublicUser, error)
	SubscribedChannels(ctx context.Context, subscriberID uint64) ([]PublicUser, error)
}

type VideoStore interface {
	Create(ctx context.Context, v model.Video) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Video, error)
	List(ctx context.Context, q VideoListQuery) ([]VideoListRow, int64, error)
	UpdateDetails(ctx context.Context, id uint64, title, description, thumbnailURL string) error
	Delete(ctx context.Context, id uint64) error
	SetPublished(ctx context.Context, id uint64, published bool) error
	RecordView(ctx context.Context, viewerID, videoID uint64) error
	WatchHistory(ctx context.Context, userID uint64) ([]WatchHistoryRow, error)
}

type CommentStore interface {
	Create(ctx context.Context, c model.Comment) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Comment, error)
	ListByVideo(ctx context.Context, videoID uint64, page, pageSize int) ([]CommentRow, int64, error)
	UpdateContent(ctx context.Context, id uint64, content string) error
	Delete(ctx context.Context, id uint64) error
}

type TweetStore interface {
	Create(ctx context.Context, t model.Tweet) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Tweet, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Tweet, error)
	UpdateContent(ctx context.Context, id uint64, content string) error
	Delete(ctx context.Context, id uint64) error
}
