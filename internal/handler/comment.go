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

// CommentHandler covers comment CRUD on videos.
type CommentHandler struct {
	Comments repository.CommentStore
	Videos   repository.VideoStore
}

func NewCommentHandler(cm repository.CommentStore, v repository.VideoStore) *CommentHandler {
	return &CommentHandler{Comments: cm, Videos: v}
}

type commentReq struct {
	Content string `json:"content" form:"content"`
}

// commentResp mirrors the snake_case projection listings use; the internal
// row struct carries no json tags.
type commentResp struct {
	ID        uint64    `json:"id"`
	VideoID   uint64    `json:"video_id"`
	OwnerID   uint64    `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func commentView(cm model.Comment) commentResp {
	return commentResp{
		ID:        cm.ID,
		VideoID:   cm.VideoID,
		OwnerID:   cm.OwnerID,
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
	}
}

// ListComments returns one page of a video's comments, newest first.
func (h *CommentHandler) ListComments(c echo.Context) error {
	videoID, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}
	page, pageSize, err := pagination(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Videos.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "video does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	items, total, err := h.Comments.ListByVideo(ctx, videoID, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, echo.Map{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}, "comments fetched successfully")
}

// AddComment attaches a comment to a video.
func (h *CommentHandler) AddComment(c echo.Context) error {
	videoID, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return fail(c, http.StatusBadRequest, "content is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Videos.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "video does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	id, err := h.Comments.Create(ctx, model.Comment{
		VideoID: videoID,
		OwnerID: middleware.ViewerID(c),
		Content: strings.TrimSpace(req.Content),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "create comment failed")
	}
	created, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load comment failed")
	}
	return ok(c, http.StatusCreated, commentView(created), "comment created successfully")
}

// UpdateComment edits a comment's content.  Author only.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	id, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid comment id")
	}
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return fail(c, http.StatusBadRequest, "content is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "comment does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if cm.OwnerID != middleware.ViewerID(c) {
		return fail(c, http.StatusForbidden, "only the author can edit this comment")
	}

	if err := h.Comments.UpdateContent(ctx, id, strings.TrimSpace(req.Content)); err != nil {
		return fail(c, http.StatusInternalServerError, "update comment failed")
	}
	updated, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load comment failed")
	}
	return ok(c, http.StatusOK, commentView(updated), "comment updated successfully")
}

// DeleteComment removes a comment.  Author only.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid comment id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "comment does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if cm.OwnerID != middleware.ViewerID(c) {
		return fail(c, http.StatusForbidden, "only the author can delete this comment")
	}

	if err := h.Comments.Delete(ctx, id); err != nil {
		return fail(c, http.StatusInternalServerError, "delete comment failed")
	}
	return ok(c, http.StatusOK, echo.Map{}, "comment deleted successfully")
}
