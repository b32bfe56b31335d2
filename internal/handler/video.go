package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/videotube/internal/media"
	"github.com/iliyamo/videotube/internal/middleware"
	"github.com/iliyamo/videotube/internal/model"
	"github.com/iliyamo/videotube/internal/queue"
	"github.com/iliyamo/videotube/internal/repository"
	queue_publisher "github.com/iliyamo/videotube/internal/service"
)

// VideoHandler covers video publishing, listing, watch history and the
// owner-only mutations.
type VideoHandler struct {
	Videos repository.VideoStore
	Users  repository.UserStore
	Media  media.Storage
}

func NewVideoHandler(v repository.VideoStore, u repository.UserStore, m media.Storage) *VideoHandler {
	return &VideoHandler{Videos: v, Users: u, Media: m}
}

type videoDetailResp struct {
	ID              uint64    `json:"id"`
	OwnerID         uint64    `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"video_url"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	DurationSeconds float64   `json:"duration_seconds"`
	Views           uint64    `json:"views"`
	IsPublished     bool      `json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
}

func videoDetail(v model.Video) videoDetailResp {
	return videoDetailResp{
		ID:              v.ID,
		OwnerID:         v.OwnerID,
		Title:           v.Title,
		Description:     v.Description,
		VideoURL:        v.VideoURL,
		ThumbnailURL:    v.ThumbnailURL,
		DurationSeconds: v.DurationSeconds,
		Views:           v.Views,
		IsPublished:     v.IsPublished,
		CreatedAt:       v.CreatedAt,
	}
}

// pagination reads 1-based page/page_size query parameters.  Absent values
// fall back to defaults; explicit non-positive values are rejected.
func pagination(c echo.Context) (page, pageSize int, err error) {
	page, pageSize = 1, 10
	if s := c.QueryParam("page"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n <= 0 {
			return 0, 0, errors.New("page must be a positive integer")
		}
		page = n
	}
	if s := c.QueryParam("page_size"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n <= 0 {
			return 0, 0, errors.New("page_size must be a positive integer")
		}
		pageSize = n
	}
	return page, pageSize, nil
}

// ListVideos returns one page of published videos.  Supports an optional
// owner filter and a whitelisted sort; skip/limit runs inside the query.
func (h *VideoHandler) ListVideos(c echo.Context) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	q := repository.VideoListQuery{
		SortBy:   c.QueryParam("sort_by"),
		SortDir:  c.QueryParam("sort_dir"),
		Page:     page,
		PageSize: pageSize,
	}
	if s := c.QueryParam("owner_id"); s != "" {
		id, convErr := strconv.ParseUint(s, 10, 64)
		if convErr != nil {
			return fail(c, http.StatusBadRequest, "invalid owner_id")
		}
		q.OwnerID = id
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.Videos.List(ctx, q)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, echo.Map{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}, "videos fetched successfully")
}

// PublishVideo uploads the video file and thumbnail to object storage and
// creates the video row.  A video.published event goes out asynchronously;
// event failures never fail the request.
func (h *VideoHandler) PublishVideo(c echo.Context) error {
	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	if title == "" {
		return fail(c, http.StatusBadRequest, "title is required")
	}
	if description == "" {
		return fail(c, http.StatusBadRequest, "description is required")
	}
	if h.Media == nil {
		return fail(c, http.StatusInternalServerError, "media storage unavailable")
	}

	videoFH, err := c.FormFile("video")
	if err != nil {
		return fail(c, http.StatusBadRequest, "video file is required")
	}
	thumbFH, err := c.FormFile("thumbnail")
	if err != nil {
		return fail(c, http.StatusBadRequest, "thumbnail is required")
	}

	videoPath, err := saveTempFile(videoFH)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "spool upload failed")
	}
	videoRes, err := h.Media.Upload(c.Request().Context(), videoPath, media.KindVideo)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "video upload failed")
	}

	thumbPath, err := saveTempFile(thumbFH)
	if err != nil {
		h.discardUpload(c, videoRes.Key)
		return fail(c, http.StatusInternalServerError, "spool upload failed")
	}
	thumbRes, err := h.Media.Upload(c.Request().Context(), thumbPath, media.KindImage)
	if err != nil {
		// The video object is already in the bucket; don't orphan it.
		h.discardUpload(c, videoRes.Key)
		return fail(c, http.StatusInternalServerError, "thumbnail upload failed")
	}

	duration := 0.0
	if s := c.FormValue("duration_seconds"); s != "" {
		if d, convErr := strconv.ParseFloat(s, 64); convErr == nil && d >= 0 {
			duration = d
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid := middleware.ViewerID(c)
	v := model.Video{
		OwnerID:         uid,
		Title:           title,
		Description:     description,
		VideoURL:        videoRes.URL,
		ThumbnailURL:    thumbRes.URL,
		DurationSeconds: duration,
		IsPublished:     true,
	}
	id, err := h.Videos.Create(ctx, v)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "create video failed")
	}

	created, err := h.Videos.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load video failed")
	}

	username := ""
	if u, uErr := h.Users.GetByID(ctx, uid); uErr == nil {
		username = u.Username
	}
	go func() {
		ev := queue.VideoPublishedEvent{
			VideoID:         created.ID,
			OwnerID:         created.OwnerID,
			OwnerUsername:   username,
			Title:           created.Title,
			DurationSeconds: created.DurationSeconds,
			VideoURL:        created.VideoURL,
			PublishedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if err := queue_publisher.PublishVideoPublished(context.Background(), ev); err != nil {
			log.Printf("video-publish event failed: %v", err)
		}
	}()

	return ok(c, http.StatusCreated, videoDetail(created), "video uploaded successfully")
}

// discardUpload best-effort deletes an object stored during a request that
// did not go through.
func (h *VideoHandler) discardUpload(c echo.Context, key string) {
	if key == "" {
		return
	}
	if err := h.Media.Delete(c.Request().Context(), key); err != nil {
		log.Printf("delete orphaned upload %s failed: %v", key, err)
	}
}

// GetVideo returns one video.  Unpublished videos are visible only to their
// owner.  Authenticated non-owner views bump the counter and upsert the
// viewer's watch history.
func (h *VideoHandler) GetVideo(c echo.Context) error {
	id, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "video does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	viewer := middleware.ViewerID(c)
	if !v.IsPublished && v.OwnerID != viewer {
		return fail(c, http.StatusNotFound, "video does not exist")
	}

	if viewer != 0 && viewer != v.OwnerID {
		if err := h.Videos.RecordView(ctx, viewer, v.ID); err != nil {
			log.Printf("record view failed for video %d: %v", v.ID, err)
		} else {
			v.Views++
		}
	}
	return ok(c, http.StatusOK, videoDetail(v), "video fetched successfully")
}

// UpdateVideo edits title/description and optionally replaces the
// thumbnail.  Owner only.
func (h *VideoHandler) UpdateVideo(c echo.Context) error {
	id, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}
	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	if title == "" || description == "" {
		return fail(c, http.StatusBadRequest, "title and description are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "video does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if v.OwnerID != middleware.ViewerID(c) {
		return fail(c, http.StatusForbidden, "only the owner can edit this video")
	}

	thumbnailURL := v.ThumbnailURL
	if fh, fhErr := c.FormFile("thumbnail"); fhErr == nil {
		if h.Media == nil {
			return fail(c, http.StatusInternalServerError, "media storage unavailable")
		}
		path, spoolErr := saveTempFile(fh)
		if spoolErr != nil {
			return fail(c, http.StatusInternalServerError, "spool upload failed")
		}
		res, upErr := h.Media.Upload(c.Request().Context(), path, media.KindImage)
		if upErr != nil {
			return fail(c, http.StatusInternalServerError, "thumbnail upload failed")
		}
		// Old thumbnail is replaced; drop the object best-effort.
		if key := h.Media.KeyFromURL(v.ThumbnailURL); key != "" {
			if delErr := h.Media.Delete(c.Request().Context(), key); delErr != nil {
				log.Printf("delete old thumbnail failed: %v", delErr)
			}
		}
		thumbnailURL = res.URL
	}

	if err := h.Videos.UpdateDetails(ctx, id, title, description, thumbnailURL); err != nil {
		return fail(c, http.StatusInternalServerError, "update video failed")
	}
	updated, err := h.Videos.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load video failed")
	}
	return ok(c, http.StatusOK, videoDetail(updated), "video details updated successfully")
}

// DeleteVideo removes the row and best-effort deletes the stored media.
// Owner only.
func (h *VideoHandler) DeleteVideo(c echo.Context) error {
	id, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "video does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if v.OwnerID != middleware.ViewerID(c) {
		return fail(c, http.StatusForbidden, "only the owner can delete this video")
	}

	if err := h.Videos.Delete(ctx, id); err != nil {
		return fail(c, http.StatusInternalServerError, "delete video failed")
	}
	if h.Media != nil {
		for _, url := range []string{v.VideoURL, v.ThumbnailURL} {
			if key := h.Media.KeyFromURL(url); key != "" {
				if delErr := h.Media.Delete(c.Request().Context(), key); delErr != nil {
					log.Printf("delete media %s failed: %v", key, delErr)
				}
			}
		}
	}
	return ok(c, http.StatusOK, echo.Map{}, "video deleted successfully")
}

// TogglePublish flips video visibility.  Owner only.
func (h *VideoHandler) TogglePublish(c echo.Context) error {
	id, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid video id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "video does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if v.OwnerID != middleware.ViewerID(c) {
		return fail(c, http.StatusForbidden, "only the owner can change publish state")
	}

	if err := h.Videos.SetPublished(ctx, id, !v.IsPublished); err != nil {
		return fail(c, http.StatusInternalServerError, "update publish state failed")
	}
	return ok(c, http.StatusOK, echo.Map{"is_published": !v.IsPublished}, "publish state updated successfully")
}

// WatchHistory hydrates the viewer's watched videos with each owner's
// public fields.
func (h *VideoHandler) WatchHistory(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Videos.WatchHistory(ctx, middleware.ViewerID(c))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, echo.Map{"items": rows, "count": len(rows)}, "watch history fetched successfully")
}
