// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound indicates that a referenced entity does not
// exist, while ErrUserExists signals a username/email uniqueness
// violation during registration.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested entity (user, channel, video,
// comment, tweet) does not exist. Handlers should translate this into an
// HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrUserExists is returned when registration collides with an existing
// username or email. Handlers should translate this into an HTTP 409
// response.
var ErrUserExists = errors.New("username or email already exists")

// isDuplicate reports whether err is a MySQL duplicate-key error (1062).
// The driver does not export a typed error for this, so the code is
// matched in the message.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
