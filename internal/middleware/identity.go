package middleware

// identity.go defines helper functions shared across middleware files.
// ViewerID pulls the resolved user ID out of the Echo context after JWTAuth
// or OptionalJWTAuth have run; rate limiting keys off the same value.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// ViewerID returns the authenticated user's ID or 0 for anonymous requests.
func ViewerID(c echo.Context) uint64 {
    if v, ok := c.Get("user_id").(uint64); ok {
        return v
    }
    return 0
}

// currentUserID renders the viewer identity for rate-limit keys; anonymous
// requests share the "anon" bucket per IP.
func currentUserID(c echo.Context) string {
    if id := ViewerID(c); id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
