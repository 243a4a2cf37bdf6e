package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// VideoHandler implements upload, listing and lifecycle management for
// videos.
type VideoHandler struct {
	Videos VideoStore
	Media  MediaStore
	Prober DurationProber
}

type pagedVideos struct {
	Videos     []models.Video `json:"videos"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalCount int64          `json:"totalCount"`
	TotalPages int64          `json:"totalPages"`
}

// Publish handles POST /api/v1/videos (multipart).
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
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

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video file is required")
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "thumbnail file is required")
		return
	}
	defer thumbFile.Close()

	// The probe needs a real file path, so the upload is staged on disk
	// before it goes to the object store.
	staged, err := stageUpload(videoFile, videoHeader)
	if err != nil {
		logger.Error("failed to stage video upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process video file")
		return
	}
	defer func() {
		staged.Close()
		os.Remove(staged.Name())
	}()

	duration, err := h.Prober.Duration(ctx, staged.Name())
	if err != nil {
		logger.Error("failed to probe video duration", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "unsupported or corrupt video file")
		return
	}

	if _, err := staged.Seek(0, io.SeekStart); err != nil {
		logger.Error("failed to rewind staged upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process video file")
		return
	}

	videoKey := "videos/" + newID() + strings.ToLower(filepath.Ext(videoHeader.Filename))
	videoObj, err := h.Media.Upload(ctx, videoKey, videoHeader.Header.Get("Content-Type"), staged)
	if err != nil {
		logger.Error("video upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store video file")
		return
	}

	thumbKey := "thumbnails/" + newID() + strings.ToLower(filepath.Ext(thumbHeader.Filename))
	thumbObj, err := h.Media.Upload(ctx, thumbKey, thumbHeader.Header.Get("Content-Type"), thumbFile)
	if err != nil {
		h.discard(ctx, videoObj.Key)
		logger.Error("thumbnail upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
		return
	}

	now := time.Now().UTC()
	video := models.Video{
		ID:           newID(),
		OwnerID:      principal.ID,
		Title:        title,
		Description:  description,
		VideoURL:     videoObj.URL,
		VideoKey:     videoObj.Key,
		ThumbnailURL: thumbObj.URL,
		ThumbnailKey: thumbObj.Key,
		Duration:     duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.discard(ctx, videoObj.Key)
		h.discard(ctx, thumbObj.Key)
		logger.Error("failed to create video record", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to publish video")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, "video published successfully", video)
}

// List handles GET /api/v1/videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	params := repositories.ListVideosParams{
		Query: strings.TrimSpace(q.Get("query")),
		Page:  parsePositiveInt(q.Get("page"), 1),
		Limit: parsePositiveInt(q.Get("limit"), defaultPageSize),
	}
	if params.Limit > maxPageSize {
		params.Limit = maxPageSize
	}

	if ownerID := strings.TrimSpace(q.Get("userId")); ownerID != "" {
		id, ok := parseID(ownerID)
		if !ok {
			respondError(ctx, w, http.StatusBadRequest, "invalid userId")
			return
		}
		params.OwnerID = id
	}

	params.SortBy = q.Get("sortBy")
	params.SortDesc = !strings.EqualFold(q.Get("sortType"), "asc")

	videos, total, err := h.Videos.List(ctx, params)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list videos", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch videos")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	totalPages := total / int64(params.Limit)
	if total%int64(params.Limit) != 0 {
		totalPages++
	}

	respondJSON(ctx, w, http.StatusOK, "videos fetched successfully", pagedVideos{
		Videos:     videos,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalCount: total,
		TotalPages: totalPages,
	})
}

// Get handles GET /api/v1/videos/{videoId}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videoID, ok := parseID(r.PathValue("videoId"))
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		h.respondVideoError(ctx, w, err, videoID)
		return
	}

	// Unpublished videos are visible to their owner only; everyone else
	// cannot tell them apart from missing ones.
	if !video.IsPublished && video.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}

	if err := h.Videos.RecordView(ctx, videoID, principal.ID); err != nil {
		logging.FromContext(ctx).Warn("failed to record view", "error", err, "videoId", videoID)
	} else {
		video.Views++
	}

	respondJSON(ctx, w, http.StatusOK, "video fetched successfully", video)
}

// Update handles PATCH /api/v1/videos/{videoId} (multipart).
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))

	var newThumb storage.Object
	thumbFile, thumbHeader, thumbErr := r.FormFile("thumbnail")
	if thumbErr == nil {
		defer thumbFile.Close()
	}

	if title == "" && description == "" && thumbErr != nil {
		respondError(ctx, w, http.StatusBadRequest, "nothing to update")
		return
	}

	if thumbErr == nil {
		key := "thumbnails/" + newID() + strings.ToLower(filepath.Ext(thumbHeader.Filename))
		uploaded, err := h.Media.Upload(ctx, key, thumbHeader.Header.Get("Content-Type"), thumbFile)
		if err != nil {
			logger.Error("thumbnail upload failed", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
			return
		}
		newThumb = uploaded
	}

	oldThumbKey := ""
	if title != "" {
		video.Title = title
	}
	if description != "" {
		video.Description = description
	}
	if newThumb.Key != "" {
		oldThumbKey = video.ThumbnailKey
		video.ThumbnailURL = newThumb.URL
		video.ThumbnailKey = newThumb.Key
	}

	if err := h.Videos.Update(ctx, video); err != nil {
		h.discard(ctx, newThumb.Key)
		logger.Error("failed to update video", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update video")
		return
	}

	if oldThumbKey != "" {
		h.discard(ctx, oldThumbKey)
	}

	respondJSON(ctx, w, http.StatusOK, "video updated successfully", video)
}

// Delete handles DELETE /api/v1/videos/{videoId}. Cleanup runs in a fixed
// order so a partial failure leaves the record visible and retryable:
// playlist references first, then media objects, then the record itself.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	if err := h.Videos.DetachFromPlaylists(ctx, video.ID); err != nil {
		logger.Error("failed to detach video from playlists", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete video")
		return
	}

	if err := h.Media.Delete(ctx, video.ThumbnailKey); err != nil {
		logger.Error("failed to delete thumbnail object", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete video")
		return
	}

	if err := h.Media.Delete(ctx, video.VideoKey); err != nil {
		logger.Error("failed to delete video object", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete video")
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("failed to delete video record", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete video")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "video deleted successfully", nil)
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	published, err := h.Videos.TogglePublish(ctx, video.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logging.FromContext(ctx).Error("failed to toggle publish state", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to toggle publish state")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "publish state toggled successfully", map[string]bool{"isPublished": published})
}

// ownedVideo loads the {videoId} path video and enforces ownership. It writes
// the error response itself when the second return is false.
func (h VideoHandler) ownedVideo(w http.ResponseWriter, r *http.Request) (models.Video, bool) {
	ctx := r.Context()

	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return models.Video{}, false
	}

	videoID, ok := parseID(r.PathValue("videoId"))
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return models.Video{}, false
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		h.respondVideoError(ctx, w, err, videoID)
		return models.Video{}, false
	}

	if video.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to modify this video")
		return models.Video{}, false
	}

	return video, true
}

func (h VideoHandler) respondVideoError(ctx context.Context, w http.ResponseWriter, err error, videoID string) {
	if errors.Is(err, repositories.ErrNotFound) {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}
	logging.FromContext(ctx).Error("failed to load video", "error", err, "videoId", videoID)
	respondError(ctx, w, http.StatusInternalServerError, "failed to fetch video")
}

func (h VideoHandler) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.Media.Delete(ctx, key); err != nil {
		logging.FromContext(ctx).Warn("failed to delete media object", "key", key, "error", err)
	}
}

func stageUpload(file multipart.File, header *multipart.FileHeader) (*os.File, error) {
	staged, err := os.CreateTemp("", "upload-*"+strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	if _, err := io.Copy(staged, file); err != nil {
		staged.Close()
		os.Remove(staged.Name())
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	return staged, nil
}

func parsePositiveInt(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
