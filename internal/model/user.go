package model

import "time"

// User represents an account record as stored in the `users` table.
// Each field corresponds to a column in the database.  The json tags are
// omitted here because these structs are used internally by the repository
// layer; handlers define separate response types that whitelist the fields
// safe to return.  PasswordHash and RefreshTokenHash must never leave the
// process.
//
// Fields:
//  ID               – primary key identifier of the user.
//  Username         – unique handle, stored lowercase.
//  Email            – unique email address, stored lowercase.
//  FullName         – display name.
//  PasswordHash     – bcrypt hashed password.
//  AvatarURL        – durable URL of the avatar image (may be empty).
//  CoverImageURL    – durable URL of the channel cover image (may be empty).
//  RefreshTokenHash – SHA‑256 hex digest of the single active refresh token,
//                     nil when the user has no active session.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type User struct {
    ID               uint64     // users.id
    Username         string     // users.username
    Email            string     // users.email
    FullName         string     // users.full_name
    PasswordHash     string     // users.password_hash
    AvatarURL        string     // users.avatar_url
    CoverImageURL    string     // users.cover_image_url
    RefreshTokenHash *string    // users.refresh_token_hash (nullable)
    CreatedAt        time.Time  // users.created_at
    UpdatedAt        time.Time  // users.updated_at
}
