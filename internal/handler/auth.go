package handler

import (
    "context"              // request-scoped deadlines threaded into the store
    "errors"               // sentinel comparisons against repository errors
    "log"                  // best-effort cleanup failures are logged, not fatal
    "net/http"             // HTTP status codes and cookie primitives
    "strings"              // trimming and normalization of identity fields
    "time"                 // cookie expiry

    "github.com/labstack/echo/v4"  // Echo framework for HTTP routing

    "github.com/iliyamo/videotube/internal/config"     // app configuration
    "github.com/iliyamo/videotube/internal/media"      // profile image uploads
    "github.com/iliyamo/videotube/internal/middleware" // viewer identity extraction
    "github.com/iliyamo/videotube/internal/model"      // user entity
    "github.com/iliyamo/videotube/internal/repository" // store interfaces
    "github.com/iliyamo/videotube/internal/utils"      // hashing, token issuing
)

// AuthHandler bundles dependencies for session endpoints.  Media may be nil
// when no object store is configured; registration then skips profile images.
type AuthHandler struct {
	Cfg   config.Config
	Users repository.UserStore
	Media media.Storage
}

func NewAuthHandler(cfg config.Config, u repository.UserStore, m media.Storage) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Media: m}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	FullName string `json:"full_name" form:"full_name"`
	Password string `json:"password" form:"password"`
}
type loginReq struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}
type changePasswordReq struct {
	OldPassword     string `json:"old_password" form:"old_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// userPart is the sanitized identity returned to clients.  The password
// hash and refresh token hash never appear here.
type userPart struct {
	ID            uint64    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url"`
	CreatedAt     time.Time `json:"created_at"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func sanitize(u model.User) userPart {
	return userPart{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}

// Register: validate identity fields, enforce uniqueness, hash the password
// and create the user.  Optional avatar/cover_image multipart files are
// uploaded to object storage before the insert.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Username == "" || req.Email == "" || req.FullName == "" || strings.TrimSpace(req.Password) == "" {
		return fail(c, http.StatusBadRequest, "username, email, full_name and password are required")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "hash password failed")
	}

	u := model.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
	}

	// Profile images are optional at registration time, but a file that was
	// sent and failed to store is an error, not a silent omission.
	if h.Media != nil {
		var upErr error
		if u.AvatarURL, upErr = h.uploadImage(c, "avatar"); upErr != nil {
			return fail(c, http.StatusInternalServerError, "avatar upload failed")
		}
		if u.CoverImageURL, upErr = h.uploadImage(c, "cover_image"); upErr != nil {
			h.discardUploads(c, u.AvatarURL)
			return fail(c, http.StatusInternalServerError, "cover image upload failed")
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, u)
	if err != nil {
		// The images were stored before the insert; don't orphan them.
		h.discardUploads(c, u.AvatarURL, u.CoverImageURL)
		if errors.Is(err, repository.ErrUserExists) {
			return fail(c, http.StatusConflict, "username or email already exists")
		}
		return fail(c, http.StatusInternalServerError, "create user failed")
	}

	created, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load user failed")
	}
	return ok(c, http.StatusCreated, sanitize(created), "user registered successfully")
}

// uploadImage spools an optional multipart file and sends it to object
// storage.  An absent field (or a non-multipart request) is not an error;
// a file that was sent but could not be stored is.
func (h *AuthHandler) uploadImage(c echo.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil // field absent
	}
	path, err := saveTempFile(fh)
	if err != nil {
		return "", err
	}
	res, err := h.Media.Upload(c.Request().Context(), path, media.KindImage)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// discardUploads best-effort deletes objects stored for a registration that
// did not go through.
func (h *AuthHandler) discardUploads(c echo.Context, urls ...string) {
	if h.Media == nil {
		return
	}
	for _, url := range urls {
		if url == "" {
			continue
		}
		if key := h.Media.KeyFromURL(url); key != "" {
			if err := h.Media.Delete(c.Request().Context(), key); err != nil {
				log.Printf("delete orphaned upload %s failed: %v", key, err)
			}
		}
	}
}

// Login: at least one of username/email plus the password.  On success a
// fresh access/refresh pair is issued, the refresh hash is persisted on the
// user row (superseding any previous refresh token) and both tokens are
// also delivered as HTTP-only cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" && req.Email == "" {
		return fail(c, http.StatusBadRequest, "username or email required")
	}
	if req.Password == "" {
		return fail(c, http.StatusBadRequest, "password required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "user does not exist")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	return h.issuePair(c, ctx, u, http.StatusOK, "logged in successfully")
}

// issuePair mints an access/refresh pair for u, persists the refresh hash
// and writes both cookies plus the JSON envelope.
func (h *AuthHandler) issuePair(c echo.Context, ctx context.Context, u model.User, status int, message string) error {
	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Username, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue access failed")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue refresh failed")
	}
	if err := h.Users.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Token)); err != nil {
		return fail(c, http.StatusInternalServerError, "save refresh failed")
	}

	h.setAuthCookie(c, "accessToken", access.Token, access.Exp)
	h.setAuthCookie(c, "refreshToken", refresh.Token, refresh.Exp)

	return ok(c, status, authResp{
		User:    sanitize(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Token, Expires: refresh.Exp},
	}, message)
}

// Logout: clear the persisted refresh token and expire both cookies.
// Logging out twice is fine; clearing an already empty field succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid := middleware.ViewerID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.ClearRefresh(ctx, uid); err != nil {
		return fail(c, http.StatusInternalServerError, "logout failed")
	}
	h.clearAuthCookie(c, "accessToken")
	h.clearAuthCookie(c, "refreshToken")
	return ok(c, http.StatusOK, echo.Map{}, "logged out successfully")
}

// Refresh: validate the presented refresh token (cookie or body), check it
// against the persisted hash and rotate the pair.  A token that verifies
// but no longer matches the stored hash has been superseded by a newer
// login or rotation and is rejected.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := ""
	if ck, err := c.Cookie("refreshToken"); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		var req refreshReq
		_ = c.Bind(&req)
		raw = strings.TrimSpace(req.RefreshToken)
	}
	if raw == "" {
		return fail(c, http.StatusUnauthorized, "refresh token required")
	}

	uid, err := utils.ParseRefreshSubject(h.Cfg.RefreshSecret, raw)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid refresh token")
		}
		return fail(c, http.StatusInternalServerError, "load user failed")
	}
	if u.RefreshTokenHash == nil || *u.RefreshTokenHash != utils.HashRefreshRaw(raw) {
		return fail(c, http.StatusUnauthorized, "refresh token expired or superseded")
	}

	return h.issuePair(c, ctx, u, http.StatusOK, "tokens refreshed successfully")
}

// ChangePassword: verify the old password and replace the stored hash.
// The new password must differ from the old one and match its confirmation.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return fail(c, http.StatusBadRequest, "old_password, new_password and confirm_password are required")
	}
	if req.NewPassword == req.OldPassword {
		return fail(c, http.StatusBadRequest, "new password must differ from the old one")
	}
	if req.NewPassword != req.ConfirmPassword {
		return fail(c, http.StatusBadRequest, "new password and confirmation do not match")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid := middleware.ViewerID(c)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load user failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.OldPassword) {
		return fail(c, http.StatusUnauthorized, "old password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "hash password failed")
	}
	if err := h.Users.UpdatePasswordHash(ctx, uid, hash); err != nil {
		return fail(c, http.StatusInternalServerError, "update password failed")
	}
	return ok(c, http.StatusOK, echo.Map{}, "password changed successfully")
}

// Me: return the current sanitized user.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.ViewerID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "load user failed")
	}
	return ok(c, http.StatusOK, sanitize(u), "current user fetched successfully")
}

// setAuthCookie writes an HTTP-only cookie scoped to the whole site.
func (h *AuthHandler) setAuthCookie(c echo.Context, name, value string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  exp,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookie instructs the client to drop a cookie.
func (h *AuthHandler) clearAuthCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
