package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/videotube/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/videotube/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while operations that need a valid access token are registered on a
// JWT‑protected subgroup of the same prefix.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to rotate the token pair at /v1/auth/refresh.
	// The refresh token is read from the refreshToken cookie or the body.
	g.POST("/refresh", a.Refresh)

	// Create another group for auth routes that require a valid access token.
	// All handlers registered on this group will execute the JWTAuth
	// middleware before being invoked.
	auth := e.Group("/v1/auth")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Logout clears the persisted refresh token and expires both cookies.
	auth.POST("/logout", a.Logout)
	// Change the current user's password after verifying the old one.
	auth.POST("/change-password", a.ChangePassword)
	// Register a GET endpoint at /v1/auth/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)
}

// RegisterChannels wires the channel read model: public profile pages,
// subscriber listings and the subscription toggle.  The profile endpoint
// accepts an optional token so is_subscribed can reflect the viewer; the
// toggle requires one.  The browse middlewares (response cache, rate limit)
// are applied to the public GETs only.
func RegisterChannels(e *echo.Echo, ch *handler.ChannelHandler, jwtSecret string, browse ...echo.MiddlewareFunc) {
	// Channel profile by username.  OptionalJWTAuth never rejects; an
	// anonymous viewer simply gets is_subscribed=false.
	e.GET("/v1/channels/:username", ch.GetChannelProfile, append([]echo.MiddlewareFunc{middleware.OptionalJWTAuth(jwtSecret)}, browse...)...)
	// Everyone following a channel, with a count.
	e.GET("/v1/channels/:channelId/subscribers", ch.GetSubscribers, browse...)
	// Channels a user follows, hydrated with public profile fields.
	e.GET("/v1/users/:subscriberId/subscriptions", ch.GetSubscribedChannels, browse...)

	// Flipping a subscription needs a logged‑in viewer.
	auth := e.Group("/v1/subscriptions")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("/:channelId/toggle", ch.ToggleSubscription)
}

// RegisterVideos wires the video catalogue and the comment endpoints that
// hang off it.  Public browsing goes through the optional browse
// middlewares; everything that writes requires a valid access token.
func RegisterVideos(e *echo.Echo, v *handler.VideoHandler, cm *handler.CommentHandler, jwtSecret string, browse ...echo.MiddlewareFunc) {
	// Paginated, sortable catalogue of published videos.
	e.GET("/v1/videos", v.ListVideos, browse...)
	// A single video.  The optional token lets owners see their own drafts
	// and lets authenticated viewers accumulate watch history.
	e.GET("/v1/videos/:id", v.GetVideo, append([]echo.MiddlewareFunc{middleware.OptionalJWTAuth(jwtSecret)}, browse...)...)
	// One page of a video's comments.
	e.GET("/v1/videos/:id/comments", cm.ListComments, browse...)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Upload a new video (multipart: video file, thumbnail, metadata).
	auth.POST("/videos", v.PublishVideo)
	// Owner‑only mutations on a video.
	auth.PATCH("/videos/:id", v.UpdateVideo)
	auth.DELETE("/videos/:id", v.DeleteVideo)
	auth.POST("/videos/:id/toggle-publish", v.TogglePublish)
	// The viewer's own watch history, newest first.
	auth.GET("/history", v.WatchHistory)
	// Comment on a video; edit or remove an own comment.
	auth.POST("/videos/:id/comments", cm.AddComment)
	auth.PATCH("/comments/:id", cm.UpdateComment)
	auth.DELETE("/comments/:id", cm.DeleteComment)
}

// RegisterTweets wires the short text posts.  Reading a user's tweets is
// public; posting, editing and deleting require authentication.
func RegisterTweets(e *echo.Echo, t *handler.TweetHandler, jwtSecret string, browse ...echo.MiddlewareFunc) {
	e.GET("/v1/users/:userId/tweets", t.GetUserTweets, browse...)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("/tweets", t.CreateTweet)
	auth.PATCH("/tweets/:id", t.UpdateTweet)
	auth.DELETE("/tweets/:id", t.DeleteTweet)
}
