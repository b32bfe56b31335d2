package main // Entry point package

import (
	"context" // Contexts for startup work with deadlines
	"log"     // Logging library
	"time"    // Durations for startup deadlines

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/videotube/internal/config"     // Internal config loader
	"github.com/iliyamo/videotube/internal/database"   // MySQL pool and migrations
	"github.com/iliyamo/videotube/internal/handler"    // HTTP handlers
	"github.com/iliyamo/videotube/internal/media"      // S3 object storage
	"github.com/iliyamo/videotube/internal/middleware" // Cache and rate limit middleware
	"github.com/iliyamo/videotube/internal/queue"      // RabbitMQ consumer
	"github.com/iliyamo/videotube/internal/repository" // SQL repositories
	"github.com/iliyamo/videotube/internal/router"     // Route registration
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win

	cfg := config.Load() // Load environment config

	// Open the MySQL pool and bring the schema up to date before serving.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis is optional: a nil client turns the cache and rate limiter into
	// pass-through middleware.
	rdb := config.NewRedisClient()

	// Object storage is optional too; without a bucket the upload endpoints
	// report that media storage is not configured.
	var store media.Storage
	if s3, err := media.NewS3Storage(ctx, config.LoadMediaConfig()); err != nil {
		log.Printf("media storage disabled: %v", err)
	} else {
		store = s3
	}

	users := repository.NewUserRepo(db)         // user accounts and channel profiles
	subs := repository.NewSubscriptionRepo(db)  // subscription edges
	videos := repository.NewVideoRepo(db)       // video catalogue and watch history
	comments := repository.NewCommentRepo(db)   // comments on videos
	tweets := repository.NewTweetRepo(db)       // short text posts

	authH := handler.NewAuthHandler(cfg, users, store)
	channelH := handler.NewChannelHandler(users, subs)
	videoH := handler.NewVideoHandler(videos, users, store)
	commentH := handler.NewCommentHandler(comments, videos)
	tweetH := handler.NewTweetHandler(tweets, users)

	// Shared middleware for public browse endpoints: rate limit first, then
	// the response cache so limited requests are never served from cache.
	browse := []echo.MiddlewareFunc{
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	}

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.AccessSecret)
	router.RegisterChannels(e, channelH, cfg.AccessSecret, browse...)
	router.RegisterVideos(e, videoH, commentH, cfg.AccessSecret, browse...)
	router.RegisterTweets(e, tweetH, cfg.AccessSecret, browse...)

	// Consume video.published events in the background.  The consumer
	// reconnects on its own; a missing broker only logs.
	go func() {
		if err := queue.StartPublishedConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
