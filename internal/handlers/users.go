package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"

	multipartMaxMemory = 32 << 20
)

// UserHandler implements registration, the credential/session flow and
// profile management.
type UserHandler struct {
	Users         UserStore
	Tokens        TokenManager
	Videos        VideoStore
	Media         MediaStore
	Limiter       RateLimiter
	SecureCookies bool
	NowFunc       func() time.Time
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type sessionResponse struct {
	User         models.Profile `json:"user"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

// Register handles POST /api/v1/users/register (multipart).
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many registration attempts")
		return
	}

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || strings.TrimSpace(password) == "" {
		respondError(ctx, w, http.StatusBadRequest, "all the fields are required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(password) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if _, err := h.Users.FindByUsernameOrEmail(ctx, username, email); err == nil {
		respondError(ctx, w, http.StatusConflict, "user with email or username already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing accounts")
		return
	}

	avatarFile, avatarHeader, err := r.FormFile("avatar")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer avatarFile.Close()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	avatar, err := h.uploadFile(ctx, avatarFile, avatarHeader, "avatars")
	if err != nil {
		logger.Error("register avatar upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	var cover storage.Object
	if coverFile, coverHeader, err := r.FormFile("coverImage"); err == nil {
		defer coverFile.Close()
		cover, err = h.uploadFile(ctx, coverFile, coverHeader, "covers")
		if err != nil {
			h.discardObject(ctx, avatar.Key)
			logger.Error("register cover upload failed", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to store cover image")
			return
		}
	}

	now := h.now()
	user := models.User{
		ID:            newID(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		Password:      string(hashed),
		AvatarURL:     avatar.URL,
		AvatarKey:     avatar.Key,
		CoverImageURL: cover.URL,
		CoverImageKey: cover.Key,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		// The uploads are orphaned if the insert fails; remove them.
		h.discardObject(ctx, avatar.Key)
		h.discardObject(ctx, cover.Key)
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "user with email or username already exists")
			return
		}
		logger.Error("register failed to create user", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create account")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, "user registered successfully", user.Profile())
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if (req.Username == "" && req.Email == "") || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "username or email and password are required")
		return
	}

	user, err := h.Users.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		logger.Warn("login user lookup failed", "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	// One active refresh token per user: a second login replaces the prior
	// session's refresh credential.
	if err := h.Users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		logger.Error("failed to persist refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.setAuthCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, "user logged in successfully", sessionResponse{
		User:         user.Profile(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Refresh handles POST /api/v1/users/refresh-token.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "refresh") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many refresh attempts")
		return
	}

	presented := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = strings.TrimSpace(req.RefreshToken)
		}
	}
	if presented == "" {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	claims, err := h.Tokens.VerifyRefresh(presented)
	if err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := h.Users.FindByID(ctx, claims.Subject)
	if err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	// A verified token that differs from the persisted one was already
	// rotated or revoked; reject it rather than resurrect the session.
	if user.RefreshToken != presented {
		logger.Warn("stale refresh token presented", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "refresh token expired or already used")
		return
	}

	tokens, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to refresh session")
		return
	}

	if err := h.Users.RotateRefreshToken(ctx, user.ID, presented, tokens.RefreshToken); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Lost a race with a concurrent rotation or logout.
			respondError(ctx, w, http.StatusUnauthorized, "refresh token expired or already used")
			return
		}
		logger.Error("failed to rotate refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to refresh session")
		return
	}

	h.setAuthCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, "access token refreshed", tokens)
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.Users.SetRefreshToken(ctx, principal.ID, ""); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		logging.FromContext(ctx).Error("failed to clear refresh token", "error", err, "userId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to log out")
		return
	}

	h.clearAuthCookies(w)
	respondJSON(ctx, w, http.StatusOK, "user logged out successfully", nil)
}

// ChangePassword handles PATCH /api/v1/users/update-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OldPassword == "" || strings.TrimSpace(req.NewPassword) == "" {
		respondError(ctx, w, http.StatusBadRequest, "old and new passwords are required")
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(principal.Password), []byte(req.OldPassword)) != nil {
		respondError(ctx, w, http.StatusUnauthorized, "incorrect password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logging.FromContext(ctx).Error("failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	if err := h.Users.UpdatePassword(ctx, principal.ID, string(hashed)); err != nil {
		logging.FromContext(ctx).Error("failed to update password", "error", err, "userId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update password")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "password updated successfully", nil)
}

// CurrentUser handles GET /api/v1/users/current-user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "user fetched successfully", principal.Profile())
}

// UpdateDetails handles PATCH /api/v1/users/update-details.
func (h UserHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req updateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" || req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "fullName and email must be filled")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	user, err := h.Users.UpdateDetails(ctx, principal.ID, req.FullName, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "email already in use")
			return
		}
		logging.FromContext(ctx).Error("failed to update details", "error", err, "userId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update user")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "updated user successfully", user.Profile())
}

// UpdateAvatar handles PATCH /api/v1/users/update-avatar (multipart).
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "avatars", true)
}

// UpdateCoverImage handles PATCH /api/v1/users/update-cover-image (multipart).
// A missing upload is an expected no-op, not an error.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", "covers", false)
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field, prefix string, required bool) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if !required {
			respondJSON(ctx, w, http.StatusOK, field+" not uploaded", nil)
			return
		}
		respondError(ctx, w, http.StatusBadRequest, field+" file missing")
		return
	}
	defer file.Close()

	uploaded, err := h.uploadFile(ctx, file, header, prefix)
	if err != nil {
		logger.Error("image upload failed", "error", err, "field", field)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store "+field)
		return
	}

	var oldKey string
	var update func() error
	if field == "avatar" {
		oldKey = principal.AvatarKey
		update = func() error { return h.Users.UpdateAvatar(ctx, principal.ID, uploaded.URL, uploaded.Key) }
	} else {
		oldKey = principal.CoverImageKey
		update = func() error { return h.Users.UpdateCoverImage(ctx, principal.ID, uploaded.URL, uploaded.Key) }
	}

	if err := update(); err != nil {
		h.discardObject(ctx, uploaded.Key)
		logger.Error("failed to persist image locator", "error", err, "field", field)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update "+field)
		return
	}

	if oldKey != "" {
		h.discardObject(ctx, oldKey)
	}

	respondJSON(ctx, w, http.StatusOK, field+" successfully updated", map[string]string{"url": uploaded.URL})
}

// ChannelProfile handles GET /api/v1/users/channel/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	username := strings.TrimSpace(strings.ToLower(r.PathValue("username")))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	channel, err := h.Users.ChannelProfile(ctx, username, principal.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel not found")
			return
		}
		logging.FromContext(ctx).Error("failed to load channel profile", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch channel")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "user channel fetched successfully", channel)
}

// WatchHistory handles GET /api/v1/users/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	entries, err := h.Videos.WatchHistory(ctx, principal.ID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to load watch history", "error", err, "userId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch watch history")
		return
	}
	if entries == nil {
		entries = []models.WatchEntry{}
	}

	respondJSON(ctx, w, http.StatusOK, "watch history fetched successfully", entries)
}

func (h UserHandler) uploadFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, prefix string) (storage.Object, error) {
	key := prefix + "/" + newID() + strings.ToLower(filepath.Ext(header.Filename))
	return h.Media.Upload(ctx, key, header.Header.Get("Content-Type"), file)
}

func (h UserHandler) discardObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.Media.Delete(ctx, key); err != nil {
		logging.FromContext(ctx).Warn("failed to delete media object", "key", key, "error", err)
	}
}

func (h UserHandler) setAuthCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h UserHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.SecureCookies,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
