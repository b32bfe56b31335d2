// Package media uploads user files (videos, thumbnails, profile images) to
// an S3-compatible object store and returns durable URLs.  The contract with
// callers: the local temp file is always removed before Upload returns,
// success or failure, so nothing ever lingers in the upload directory.
package media

import "context"

// Kind declares what is being uploaded.  It selects the key prefix in the
// bucket.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// UploadResult describes a stored object.
type UploadResult struct {
	URL string // durable public URL
	Key string // object key, used for deletion
}

// Storage is implemented by the S3 store and by test fakes.
type Storage interface {
	Upload(ctx context.Context, localPath string, kind Kind) (UploadResult, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL derives the object key back out of a durable URL, for
	// deleting media referenced only by its stored URL.
	KeyFromURL(url string) string
}
