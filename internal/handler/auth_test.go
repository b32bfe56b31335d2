package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/videotube/internal/config"
	"github.com/iliyamo/videotube/internal/media"
	"github.com/iliyamo/videotube/internal/repository"
	"github.com/iliyamo/videotube/internal/utils"
)

func testAuthHandler() (*AuthHandler, *fakeUserStore, *echo.Echo) {
	users := newFakeUserStore()
	cfg := config.Config{
		AccessSecret:   "access-secret",
		RefreshSecret:  "refresh-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     4, // keep the test suite fast
	}
	return NewAuthHandler(cfg, users, nil), users, echo.New()
}

func registerUser(t *testing.T, h *AuthHandler, e *echo.Echo, username, email, password string) {
	t.Helper()
	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/register",
		`{"username":"`+username+`","email":"`+email+`","full_name":"Test User","password":"`+password+`"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegisterThenLogin(t *testing.T) {
	h, _, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")

	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/login",
		`{"username":"alice","password":"s3cret"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status int `json:"status"`
		Data   struct {
			User    map[string]any `json:"user"`
			Access  tokenPart      `json:"access"`
			Refresh tokenPart      `json:"refresh"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)
	assert.NotEmpty(t, body.Data.Access.Token)
	assert.NotEmpty(t, body.Data.Refresh.Token)
	assert.Equal(t, "alice", body.Data.User["username"])

	// The sanitized user must never expose credential material.
	_, leaked := body.Data.User["password_hash"]
	assert.False(t, leaked)
	_, leaked = body.Data.User["refresh_token_hash"]
	assert.False(t, leaked)

	// Both cookies are set HttpOnly.
	cookies := rec.Result().Cookies()
	names := map[string]*http.Cookie{}
	for _, ck := range cookies {
		names[ck.Name] = ck
	}
	require.Contains(t, names, "accessToken")
	require.Contains(t, names, "refreshToken")
	assert.True(t, names["accessToken"].HttpOnly)
	assert.True(t, names["refreshToken"].HttpOnly)
}

func TestRegisterValidation(t *testing.T) {
	h, _, e := testAuthHandler()

	// Missing full_name.
	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/register",
		`{"username":"bob","email":"bob@example.com","password":"pw"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Whitespace-only password.
	c, rec = jsonReq(e, http.MethodPost, "/v1/auth/register",
		`{"username":"bob","email":"bob@example.com","full_name":"Bob","password":"   "}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	h, _, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")

	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/register",
		`{"username":"alice","email":"other@example.com","full_name":"Other","password":"pw"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterLowercasesIdentity(t *testing.T) {
	h, users, e := testAuthHandler()
	registerUser(t, h, e, "MixedCase", "Mixed@Example.COM", "pw")

	u, err := users.GetByID(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "mixedcase", u.Username)
	assert.Equal(t, "mixed@example.com", u.Email)
}

func TestLoginFailures(t *testing.T) {
	h, _, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")

	// Neither username nor email.
	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/login", `{"password":"s3cret"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown user.
	c, rec = jsonReq(e, http.MethodPost, "/v1/auth/login", `{"username":"nobody","password":"pw"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong password.
	c, rec = jsonReq(e, http.MethodPost, "/v1/auth/login", `{"username":"alice","password":"wrong"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginByEmail(t *testing.T) {
	h, _, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")

	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/login",
		`{"email":"alice@example.com","password":"s3cret"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// loginAndGetRefresh logs in and extracts the raw refresh token from the
// response body.
func loginAndGetRefresh(t *testing.T, h *AuthHandler, e *echo.Echo) string {
	t.Helper()
	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/login",
		`{"username":"alice","password":"s3cret"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Refresh tokenPart `json:"refresh"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Refresh.Token)
	return body.Data.Refresh.Token
}

func refreshWith(t *testing.T, h *AuthHandler, e *echo.Echo, raw string) *httptest.ResponseRecorder {
	t.Helper()
	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+raw+`"}`)
	require.NoError(t, h.Refresh(c))
	return rec
}

func TestRefreshRotatesToken(t *testing.T) {
	h, _, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")
	first := loginAndGetRefresh(t, h, e)

	rec := refreshWith(t, h, e, first)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Rotation invalidates the presented token.
	rec = refreshWith(t, h, e, first)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A second login supersedes the first session's refresh token even though
// the first token still verifies cryptographically.
func TestSecondLoginSupersedesRefresh(t *testing.T) {
	h, _, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")

	first := loginAndGetRefresh(t, h, e)
	second := loginAndGetRefresh(t, h, e)
	require.NotEqual(t, first, second)

	rec := refreshWith(t, h, e, first)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = refreshWith(t, h, e, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	h, _, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")

	// No token at all.
	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/refresh", "")
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	rec = refreshWith(t, h, e, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token signed with the access secret must not refresh.
	at, err := utils.NewAccessToken("access-secret", 1, "alice", 15)
	require.NoError(t, err)
	rec = refreshWith(t, h, e, at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshFromCookie(t *testing.T) {
	h, _, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")
	raw := loginAndGetRefresh(t, h, e)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: raw})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	h, users, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")
	raw := loginAndGetRefresh(t, h, e)

	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/logout", "")
	asViewer(c, 1, "alice")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	u, err := users.GetByID(t.Context(), 1)
	require.NoError(t, err)
	assert.Nil(t, u.RefreshTokenHash)

	// The refresh token no longer works.
	rec = refreshWith(t, h, e, raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logging out again is fine.
	c, rec = jsonReq(e, http.MethodPost, "/v1/auth/logout", "")
	asViewer(c, 1, "alice")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePassword(t *testing.T) {
	h, _, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")

	cases := []struct {
		name string
		body string
		want int
	}{
		{"same as old", `{"old_password":"s3cret","new_password":"s3cret","confirm_password":"s3cret"}`, http.StatusBadRequest},
		{"confirmation mismatch", `{"old_password":"s3cret","new_password":"newpw","confirm_password":"other"}`, http.StatusBadRequest},
		{"wrong old password", `{"old_password":"wrong","new_password":"newpw","confirm_password":"newpw"}`, http.StatusUnauthorized},
		{"success", `{"old_password":"s3cret","new_password":"newpw","confirm_password":"newpw"}`, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := jsonReq(e, http.MethodPost, "/v1/auth/change-password", tc.body)
			asViewer(c, 1, "alice")
			require.NoError(t, h.ChangePassword(c))
			assert.Equal(t, tc.want, rec.Code)
		})
	}

	// Old password no longer works, new one does.
	c, rec := jsonReq(e, http.MethodPost, "/v1/auth/login", `{"username":"alice","password":"s3cret"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = jsonReq(e, http.MethodPost, "/v1/auth/login", `{"username":"alice","password":"newpw"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMe(t *testing.T) {
	h, _, e := testAuthHandler()
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")

	c, rec := jsonReq(e, http.MethodGet, "/v1/auth/me", "")
	asViewer(c, 1, "alice")
	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Data["username"])
	_, leaked := body.Data["password_hash"]
	assert.False(t, leaked)
}

func TestRegisterImageUploadFailure(t *testing.T) {
	h, users, e := testAuthHandler()
	h.Media = &fakeMedia{failKind: media.KindImage}

	r := multipartReq(t, e, "/v1/auth/register", map[string]string{
		"username":  "alice",
		"email":     "alice@example.com",
		"full_name": "Alice",
		"password":  "s3cret",
	}, map[string]string{"avatar": "avatar.png"})
	require.NoError(t, h.Register(r.c))
	assert.Equal(t, http.StatusInternalServerError, r.rec.Code)

	// The failed upload must not leave a half-registered user behind.
	_, err := users.GetByLogin(t.Context(), "alice", "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegisterConflictDiscardsUploads(t *testing.T) {
	h, _, e := testAuthHandler()
	store := &fakeMedia{}
	h.Media = store
	registerUser(t, h, e, "alice", "alice@example.com", "s3cret")

	r := multipartReq(t, e, "/v1/auth/register", map[string]string{
		"username":  "alice",
		"email":     "other@example.com",
		"full_name": "Alice Again",
		"password":  "s3cret",
	}, map[string]string{"avatar": "avatar.png", "cover_image": "cover.png"})
	require.NoError(t, h.Register(r.c))
	assert.Equal(t, http.StatusConflict, r.rec.Code)

	// Both objects went into the store before the insert failed; both must
	// be cleaned up again.
	require.Len(t, store.uploaded, 2)
	assert.ElementsMatch(t, store.uploaded, store.deleted)
}
