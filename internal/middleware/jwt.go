package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"               // HTTP status codes for responses
    "strings"               // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates an access token and
// injects the token's subject and username claims into the request context.
// The token may arrive either as a Bearer Authorization header or as the
// accessToken cookie set at login, so both API clients and browsers work.
// Handlers access the authenticated user via `c.Get("user_id")` (uint64)
// and `c.Get("username")` (string).
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := bearerOrCookie(c)
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"status": http.StatusUnauthorized, "error": "missing access token"})
            }
            uid, username, ok := parseAccess(secret, raw)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"status": http.StatusUnauthorized, "error": "invalid token"})
            }
            c.Set("user_id", uid)
            c.Set("username", username)
            return next(c)
        }
    }
}

// OptionalJWTAuth resolves the viewer identity when a valid access token is
// present but never rejects the request.  Routes like the channel profile
// use it: an anonymous viewer simply gets is_subscribed=false.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw := bearerOrCookie(c); raw != "" {
                if uid, username, ok := parseAccess(secret, raw); ok {
                    c.Set("user_id", uid)
                    c.Set("username", username)
                }
            }
            return next(c)
        }
    }
}

// bearerOrCookie extracts the raw access token from the Authorization
// header, falling back to the accessToken cookie.
func bearerOrCookie(c echo.Context) string {
    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimPrefix(auth, "Bearer ")
    }
    if ck, err := c.Cookie("accessToken"); err == nil && ck.Value != "" {
        return ck.Value
    }
    return ""
}

// parseAccess validates the token with HS256 and the given secret and pulls
// out the subject (user ID) and username claims.
func parseAccess(secret, raw string) (uint64, string, bool) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Type assert the signing method to HMAC; reject others.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, "", false
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, "", false
    }
    // Numeric JSON claims decode as float64.
    sub, ok := claims["sub"].(float64)
    if !ok || sub <= 0 {
        return 0, "", false
    }
    username, _ := claims["username"].(string)
    return uint64(sub), username, true
}
