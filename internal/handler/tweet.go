package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/videotube/internal/middleware"
	"github.com/iliyamo/videotube/internal/model"
	"github.com/iliyamo/videotube/internal/repository"
)

// TweetHandler covers short text posts.
type TweetHandler struct {
	Tweets repository.TweetStore
	Users  repository.UserStore
}

func NewTweetHandler(t repository.TweetStore, u repository.UserStore) *TweetHandler {
	return &TweetHandler{Tweets: t, Users: u}
}

type tweetReq struct {
	Content string `json:"content" form:"content"`
}

// tweetResp mirrors the snake_case projection the rest of the API uses; the
// internal row struct carries no json tags.
type tweetResp struct {
	ID        uint64    `json:"id"`
	OwnerID   uint64    `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func tweetView(tw model.Tweet) tweetResp {
	return tweetResp{
		ID:        tw.ID,
		OwnerID:   tw.OwnerID,
		Content:   tw.Content,
		CreatedAt: tw.CreatedAt,
		UpdatedAt: tw.UpdatedAt,
	}
}

func tweetViews(tws []model.Tweet) []tweetResp {
	out := make([]tweetResp, 0, len(tws))
	for _, tw := range tws {
		out = append(out, tweetView(tw))
	}
	return out
}

// CreateTweet posts a new tweet for the current user.
func (h *TweetHandler) CreateTweet(c echo.Context) error {
	var req tweetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return fail(c, http.StatusBadRequest, "content is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Tweets.Create(ctx, model.Tweet{
		OwnerID: middleware.ViewerID(c),
		Content: strings.TrimSpace(req.Content),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "create tweet failed")
	}
	created, err := h.Tweets.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load tweet failed")
	}
	return ok(c, http.StatusCreated, tweetView(created), "tweeted successfully")
}

// GetUserTweets lists a user's tweets, newest first.
func (h *TweetHandler) GetUserTweets(c echo.Context) error {
	userID, okID := pathID(c, "userId")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "user does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	tweets, err := h.Tweets.ListByOwner(ctx, userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, echo.Map{"items": tweetViews(tweets), "count": len(tweets)}, "tweets fetched successfully")
}

// UpdateTweet edits a tweet.  Author only.
func (h *TweetHandler) UpdateTweet(c echo.Context) error {
	id, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid tweet id")
	}
	var req tweetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return fail(c, http.StatusBadRequest, "content is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tweets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "tweet does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if t.OwnerID != middleware.ViewerID(c) {
		return fail(c, http.StatusForbidden, "only the author can edit this tweet")
	}

	if err := h.Tweets.UpdateContent(ctx, id, strings.TrimSpace(req.Content)); err != nil {
		return fail(c, http.StatusInternalServerError, "update tweet failed")
	}
	updated, err := h.Tweets.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load tweet failed")
	}
	return ok(c, http.StatusOK, tweetView(updated), "tweet updated successfully")
}

// DeleteTweet removes a tweet.  Author only.
func (h *TweetHandler) DeleteTweet(c echo.Context) error {
	id, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid tweet id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tweets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "tweet does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if t.OwnerID != middleware.ViewerID(c) {
		return fail(c, http.StatusForbidden, "only the author can delete this tweet")
	}

	if err := h.Tweets.Delete(ctx, id); err != nil {
		return fail(c, http.StatusInternalServerError, "delete tweet failed")
	}
	return ok(c, http.StatusOK, echo.Map{}, "tweet deleted successfully")
}
