package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// LikeHandler implements like/dislike toggles across videos, comments and
// tweets.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
}

type toggleResult struct {
	State string `json:"state"`
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetVideo, "videoId")
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetComment, "commentId")
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetTweet, "tweetId")
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videos, err := h.Likes.LikedVideos(ctx, principal.ID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list liked videos", "error", err, "userId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch liked videos")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondJSON(ctx, w, http.StatusOK, "liked videos fetched successfully", videos)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.LikeTarget, param string) {
	ctx := r.Context()

	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	targetID, ok := parseID(r.PathValue(param))
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid "+string(kind)+" id")
		return
	}

	if err := h.targetExists(ctx, kind, targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, string(kind)+" not found")
			return
		}
		logging.FromContext(ctx).Error("failed to verify like target", "error", err, "kind", kind, "targetId", targetID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to toggle like")
		return
	}

	isLike := !strings.EqualFold(r.URL.Query().Get("sentiment"), "dislike")

	outcome, err := h.Likes.Toggle(ctx, principal.ID, kind, targetID, isLike)
	if err != nil {
		logging.FromContext(ctx).Error("failed to toggle like", "error", err, "kind", kind, "targetId", targetID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to toggle like")
		return
	}

	state := "removed"
	switch outcome {
	case repositories.ToggleCreated, repositories.ToggleUpdated:
		if isLike {
			state = "liked"
		} else {
			state = "disliked"
		}
	}

	respondJSON(ctx, w, http.StatusOK, string(kind)+" like toggled successfully", toggleResult{State: state})
}

func (h LikeHandler) targetExists(ctx context.Context, kind models.LikeTarget, targetID string) error {
	switch kind {
	case models.LikeTargetVideo:
		_, err := h.Videos.FindByID(ctx, targetID)
		return err
	case models.LikeTargetComment:
		_, err := h.Comments.FindByID(ctx, targetID)
		return err
	case models.LikeTargetTweet:
		_, err := h.Tweets.FindByID(ctx, targetID)
		return err
	}
	return repositories.ErrNotFound
}
