package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/sha256" // SHA‑256 hashing for refresh tokens
    "encoding/hex"  // hex encoding of digests
    "errors"        // sentinel errors for token verification
    "time"          // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
    "github.com/google/uuid"       // unique jti claims so repeated issuance never collides
)

// ErrInvalidToken is returned when a token fails signature or expiry checks,
// or does not carry the expected claims.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short‑lived and sent in the Authorization header (or the
// accessToken cookie) when calling protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long‑lived signed token used to obtain new
// access tokens.  The raw string goes back to the client (body + cookie);
// the database stores only a SHA‑256 hash of it on the user row, so there is
// exactly one active refresh token per user and a rotated‑out token is
// detectable by hash mismatch.
type RefreshToken struct {
    Token string    // raw signed token returned to the client
    Exp   time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// access signing secret, the user ID, the username, and a TTL in minutes.
// The JWT carries standard claims: subject (sub), username, expiration (exp)
// and issued at (iat).
func NewAccessToken(secret string, userID uint64, username string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":      userID,
        "username": username,
        "exp":      exp.Unix(),
        "iat":      time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT with the refresh secret.
// The ttlDays parameter controls how many days the token stays valid.  A
// random jti claim makes every issued token unique even when two are minted
// within the same second, which the rotation check depends on.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (RefreshToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
    claims := jwt.MapClaims{
        "sub": userID,
        "jti": uuid.NewString(),
        "exp": exp.Unix(),
        "iat": time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{Token: signed, Exp: exp}, nil
}

// ParseRefreshSubject verifies a refresh token's signature and expiry with
// the refresh secret and returns the subject user ID.  Any parse failure,
// wrong signing method or missing subject yields ErrInvalidToken.
func ParseRefreshSubject(secret, raw string) (uint64, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, ErrInvalidToken
    }
    // Numeric JSON claims decode as float64.
    sub, ok := claims["sub"].(float64)
    if !ok || sub <= 0 {
        return 0, ErrInvalidToken
    }
    return uint64(sub), nil
}

// HashRefreshRaw returns the SHA‑256 hash of the raw refresh token as a hex
// string.  Storing only the hash prevents an attacker with database access
// from replaying live sessions, and the byte-for-byte comparison against the
// stored value is what enforces single-active-refresh-token semantics.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
