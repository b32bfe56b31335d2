// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file covers the channel read model: profile projection
// with derived subscription counts, the subscription toggle and the
// subscriber/subscribed listings.  Sensitive fields (password hash, refresh
// token) never appear in any of these responses.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/videotube/internal/middleware"
	"github.com/iliyamo/videotube/internal/repository"
)

// ChannelHandler aggregates the stores needed for channel pages.
type ChannelHandler struct {
	Users repository.UserStore
	Subs  repository.SubscriptionStore
}

func NewChannelHandler(u repository.UserStore, s repository.SubscriptionStore) *ChannelHandler {
	return &ChannelHandler{Users: u, Subs: s}
}

// GetChannelProfile returns the whitelist projection of a channel resolved
// by username.  The viewer identity is optional; anonymous viewers get
// is_subscribed=false.
func (h *ChannelHandler) GetChannelProfile(c echo.Context) error {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		return fail(c, http.StatusBadRequest, "username is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	profile, err := h.Users.ChannelProfile(ctx, username, middleware.ViewerID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "channel does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, profile, "channel profile fetched successfully")
}

// ToggleSubscription flips the viewer's subscription to a channel.  The
// store-level unique constraint makes the flip race-free; the handler only
// validates the target.
func (h *ChannelHandler) ToggleSubscription(c echo.Context) error {
	channelID, okID := pathID(c, "channelId")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid channel id")
	}
	viewer := middleware.ViewerID(c)
	if viewer == channelID {
		return fail(c, http.StatusBadRequest, "cannot subscribe to your own channel")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "channel does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	subscribed, err := h.Subs.Toggle(ctx, viewer, channelID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "toggle failed")
	}
	msg := "unsubscribed"
	if subscribed {
		msg = "subscribed"
	}
	return ok(c, http.StatusOK, echo.Map{"subscribed": subscribed}, msg)
}

// GetSubscribers lists everyone following a channel with a denormalized
// count.
func (h *ChannelHandler) GetSubscribers(c echo.Context) error {
	channelID, okID := pathID(c, "channelId")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid channel id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "channel does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	subs, err := h.Subs.Subscribers(ctx, channelID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, echo.Map{"items": subs, "count": len(subs)}, "subscribers fetched successfully")
}

// GetSubscribedChannels lists the channels a user follows, hydrated with
// each channel's public profile fields.
func (h *ChannelHandler) GetSubscribedChannels(c echo.Context) error {
	subscriberID, okID := pathID(c, "subscriberId")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid subscriber id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, subscriberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "user does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	channels, err := h.Subs.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, echo.Map{"items": channels, "count": len(channels)}, "subscribed channels fetched successfully")
}
