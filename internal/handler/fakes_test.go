package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/videotube/internal/media"
	"github.com/iliyamo/videotube/internal/model"
	"github.com/iliyamo/videotube/internal/repository"
)

// In-memory store fakes backing the handler tests.  They honor the same
// sentinel errors as the SQL implementations so handlers cannot tell the
// difference.

type fakeUserStore struct {
	nextID uint64
	users  map[uint64]model.User
	subs   *fakeSubStore // optional, for profile counts
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u model.User) (uint64, error) {
	for _, e := range f.users {
		if e.Username == u.Username || e.Email == u.Email {
			return 0, repository.ErrUserExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now().UTC()
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, found := f.users[id]
	if !found {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByLogin(_ context.Context, username, email string) (model.User, error) {
	for _, u := range f.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) StoreRefresh(_ context.Context, userID uint64, tokenHash string) error {
	u, found := f.users[userID]
	if !found {
		return repository.ErrNotFound
	}
	u.RefreshTokenHash = &tokenHash
	f.users[userID] = u
	return nil
}

func (f *fakeUserStore) ClearRefresh(_ context.Context, userID uint64) error {
	if u, found := f.users[userID]; found {
		u.RefreshTokenHash = nil
		f.users[userID] = u
	}
	return nil
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, userID uint64, hash string) error {
	u, found := f.users[userID]
	if !found {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	f.users[userID] = u
	return nil
}

func (f *fakeUserStore) ChannelProfile(_ context.Context, username string, viewerID uint64) (repository.ChannelProfile, error) {
	for _, u := range f.users {
		if u.Username != username {
			continue
		}
		p := repository.ChannelProfile{
			ID:            u.ID,
			Username:      u.Username,
			Email:         u.Email,
			FullName:      u.FullName,
			AvatarURL:     u.AvatarURL,
			CoverImageURL: u.CoverImageURL,
		}
		if f.subs != nil {
			for edge := range f.subs.edges {
				if edge[1] == u.ID {
					p.SubscribersCount++
					if edge[0] == viewerID {
						p.IsSubscribed = true
					}
				}
				if edge[0] == u.ID {
					p.ChannelsSubscribedTo++
				}
			}
		}
		return p, nil
	}
	return repository.ChannelProfile{}, repository.ErrNotFound
}

// fakeSubStore keeps (subscriber, channel) edges in a set.
type fakeSubStore struct {
	edges map[[2]uint64]bool
	users *fakeUserStore
}

func newFakeSubStore(users *fakeUserStore) *fakeSubStore {
	s := &fakeSubStore{edges: map[[2]uint64]bool{}, users: users}
	users.subs = s
	return s
}

func (f *fakeSubStore) Toggle(_ context.Context, subscriberID, channelID uint64) (bool, error) {
	key := [2]uint64{subscriberID, channelID}
	if f.edges[key] {
		delete(f.edges, key)
		return false, nil
	}
	f.edges[key] = true
	return true, nil
}

func (f *fakeSubStore) Subscribers(_ context.Context, channelID uint64) ([]repository.PublicUser, error) {
	out := []repository.PublicUser{}
	for edge := range f.edges {
		if edge[1] == channelID {
			if u, found := f.users.users[edge[0]]; found {
				out = append(out, publicUser(u))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSubStore) SubscribedChannels(_ context.Context, subscriberID uint64) ([]repository.PublicUser, error) {
	out := []repository.PublicUser{}
	for edge := range f.edges {
		if edge[0] == subscriberID {
			if u, found := f.users.users[edge[1]]; found {
				out = append(out, publicUser(u))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func publicUser(u model.User) repository.PublicUser {
	return repository.PublicUser{ID: u.ID, Username: u.Username, FullName: u.FullName, AvatarURL: u.AvatarURL}
}

// fakeVideoStore keeps videos and watch history in memory.
type fakeVideoStore struct {
	nextID  uint64
	videos  map[uint64]model.Video
	history []model.WatchHistoryEntry
	users   *fakeUserStore
}

func newFakeVideoStore(users *fakeUserStore) *fakeVideoStore {
	return &fakeVideoStore{videos: map[uint64]model.Video{}, users: users}
}

func (f *fakeVideoStore) Create(_ context.Context, v model.Video) (uint64, error) {
	f.nextID++
	v.ID = f.nextID
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	f.videos[v.ID] = v
	return v.ID, nil
}

func (f *fakeVideoStore) GetByID(_ context.Context, id uint64) (model.Video, error) {
	v, found := f.videos[id]
	if !found {
		return model.Video{}, repository.ErrNotFound
	}
	return v, nil
}

func (f *fakeVideoStore) List(_ context.Context, q repository.VideoListQuery) ([]repository.VideoListRow, int64, error) {
	matched := []model.Video{}
	for _, v := range f.videos {
		if !v.IsPublished {
			continue
		}
		if q.OwnerID != 0 && v.OwnerID != q.OwnerID {
			continue
		}
		matched = append(matched, v)
	}
	asc := strings.EqualFold(q.SortDir, "asc")
	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch q.SortBy {
		case "views":
			less = matched[i].Views < matched[j].Views
		case "title":
			less = matched[i].Title < matched[j].Title
		case "duration":
			less = matched[i].DurationSeconds < matched[j].DurationSeconds
		default:
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})

	total := int64(len(matched))
	start := (q.Page - 1) * q.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	rows := []repository.VideoListRow{}
	for _, v := range matched[start:end] {
		row := repository.VideoListRow{
			ID:              v.ID,
			Title:           v.Title,
			ThumbnailURL:    v.ThumbnailURL,
			DurationSeconds: v.DurationSeconds,
			Views:           v.Views,
			CreatedAt:       v.CreatedAt,
		}
		if u, found := f.users.users[v.OwnerID]; found {
			row.Owner = publicUser(u)
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}

func (f *fakeVideoStore) UpdateDetails(_ context.Context, id uint64, title, description, thumbnailURL string) error {
	v, found := f.videos[id]
	if !found {
		return repository.ErrNotFound
	}
	v.Title, v.Description, v.ThumbnailURL = title, description, thumbnailURL
	f.videos[id] = v
	return nil
}

func (f *fakeVideoStore) Delete(_ context.Context, id uint64) error {
	if _, found := f.videos[id]; !found {
		return repository.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

func (f *fakeVideoStore) SetPublished(_ context.Context, id uint64, published bool) error {
	v, found := f.videos[id]
	if !found {
		return repository.ErrNotFound
	}
	v.IsPublished = published
	f.videos[id] = v
	return nil
}

func (f *fakeVideoStore) RecordView(_ context.Context, viewerID, videoID uint64) error {
	v, found := f.videos[videoID]
	if !found {
		return repository.ErrNotFound
	}
	v.Views++
	f.videos[videoID] = v
	for i, e := range f.history {
		if e.UserID == viewerID && e.VideoID == videoID {
			f.history[i].WatchedAt = time.Now().UTC()
			return nil
		}
	}
	f.history = append(f.history, model.WatchHistoryEntry{UserID: viewerID, VideoID: videoID, WatchedAt: time.Now().UTC()})
	return nil
}

func (f *fakeVideoStore) WatchHistory(_ context.Context, userID uint64) ([]repository.WatchHistoryRow, error) {
	rows := []repository.WatchHistoryRow{}
	for _, e := range f.history {
		if e.UserID != userID {
			continue
		}
		v, found := f.videos[e.VideoID]
		if !found {
			continue
		}
		row := repository.WatchHistoryRow{
			VideoID:         v.ID,
			Title:           v.Title,
			ThumbnailURL:    v.ThumbnailURL,
			DurationSeconds: v.DurationSeconds,
			Views:           v.Views,
			WatchedAt:       e.WatchedAt,
		}
		if u, uf := f.users.users[v.OwnerID]; uf {
			row.Owner = publicUser(u)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].WatchedAt.After(rows[j].WatchedAt) })
	return rows, nil
}

// fakeCommentStore keeps comments in memory.
type fakeCommentStore struct {
	nextID   uint64
	comments map[uint64]model.Comment
	users    *fakeUserStore
}

func newFakeCommentStore(users *fakeUserStore) *fakeCommentStore {
	return &fakeCommentStore{comments: map[uint64]model.Comment{}, users: users}
}

func (f *fakeCommentStore) Create(_ context.Context, cm model.Comment) (uint64, error) {
	f.nextID++
	cm.ID = f.nextID
	cm.CreatedAt = time.Now().UTC()
	f.comments[cm.ID] = cm
	return cm.ID, nil
}

func (f *fakeCommentStore) GetByID(_ context.Context, id uint64) (model.Comment, error) {
	cm, found := f.comments[id]
	if !found {
		return model.Comment{}, repository.ErrNotFound
	}
	return cm, nil
}

func (f *fakeCommentStore) ListByVideo(_ context.Context, videoID uint64, page, pageSize int) ([]repository.CommentRow, int64, error) {
	matched := []model.Comment{}
	for _, cm := range f.comments {
		if cm.VideoID == videoID {
			matched = append(matched, cm)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	rows := []repository.CommentRow{}
	for _, cm := range matched[start:end] {
		row := repository.CommentRow{ID: cm.ID, VideoID: cm.VideoID, Content: cm.Content, CreatedAt: cm.CreatedAt}
		if u, found := f.users.users[cm.OwnerID]; found {
			row.Owner = publicUser(u)
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}

func (f *fakeCommentStore) UpdateContent(_ context.Context, id uint64, content string) error {
	cm, found := f.comments[id]
	if !found {
		return repository.ErrNotFound
	}
	cm.Content = content
	f.comments[id] = cm
	return nil
}

func (f *fakeCommentStore) Delete(_ context.Context, id uint64) error {
	if _, found := f.comments[id]; !found {
		return repository.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

// fakeTweetStore keeps tweets in memory.
type fakeTweetStore struct {
	nextID uint64
	tweets map[uint64]model.Tweet
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{tweets: map[uint64]model.Tweet{}}
}

func (f *fakeTweetStore) Create(_ context.Context, tw model.Tweet) (uint64, error) {
	f.nextID++
	tw.ID = f.nextID
	tw.CreatedAt = time.Now().UTC()
	f.tweets[tw.ID] = tw
	return tw.ID, nil
}

func (f *fakeTweetStore) GetByID(_ context.Context, id uint64) (model.Tweet, error) {
	tw, found := f.tweets[id]
	if !found {
		return model.Tweet{}, repository.ErrNotFound
	}
	return tw, nil
}

func (f *fakeTweetStore) ListByOwner(_ context.Context, ownerID uint64) ([]model.Tweet, error) {
	out := []model.Tweet{}
	for _, tw := range f.tweets {
		if tw.OwnerID == ownerID {
			out = append(out, tw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeTweetStore) UpdateContent(_ context.Context, id uint64, content string) error {
	tw, found := f.tweets[id]
	if !found {
		return repository.ErrNotFound
	}
	tw.Content = content
	f.tweets[id] = tw
	return nil
}

func (f *fakeTweetStore) Delete(_ context.Context, id uint64) error {
	if _, found := f.tweets[id]; !found {
		return repository.ErrNotFound
	}
	delete(f.tweets, id)
	return nil
}

// fakeMedia records uploads and deletions.  failKind makes uploads of that
// kind fail, for exercising cleanup paths.
type fakeMedia struct {
	n        int
	uploaded []string
	deleted  []string
	failKind media.Kind
}

const fakeMediaBase = "https://cdn.test/"

func (f *fakeMedia) Upload(_ context.Context, localPath string, kind media.Kind) (media.UploadResult, error) {
	os.Remove(localPath) // same contract as the real store: temp file is consumed
	if f.failKind != "" && kind == f.failKind {
		return media.UploadResult{}, errors.New("storage unavailable")
	}
	f.n++
	key := fmt.Sprintf("%s/obj-%d", kind, f.n)
	f.uploaded = append(f.uploaded, key)
	return media.UploadResult{URL: fakeMediaBase + key, Key: key}, nil
}

func (f *fakeMedia) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeMedia) KeyFromURL(url string) string {
	if strings.HasPrefix(url, fakeMediaBase) {
		return strings.TrimPrefix(url, fakeMediaBase)
	}
	return ""
}

// ----- request helpers -----

// jsonReq builds an echo context around a JSON body.
func jsonReq(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// formReq wraps an echo context built around a urlencoded form body.
type formReq struct {
	c   echo.Context
	rec *httptest.ResponseRecorder
}

func newFormReq(e *echo.Echo, method, target, form string) formReq {
	req := httptest.NewRequest(method, target, strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return formReq{c: e.NewContext(req, rec), rec: rec}
}

// multipartReq builds an echo context around a multipart body with the
// given form fields and files (field name -> file name).
func multipartReq(t *testing.T, e *echo.Echo, target string, fields, files map[string]string) formReq {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("payload"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return formReq{c: e.NewContext(req, rec), rec: rec}
}

// asViewer marks the context as authenticated the way JWTAuth does.
func asViewer(c echo.Context, id uint64, username string) {
	c.Set("user_id", id)
	c.Set("username", username)
}
