package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// DashboardHandler serves a channel owner's private aggregates, including
// unpublished videos.
type DashboardHandler struct {
	Stats  StatsStore
	Videos VideoStore
}

// ChannelStats handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) ChannelStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	stats, err := h.Stats.ChannelStats(ctx, principal.ID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to compute channel stats", "error", err, "userId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch channel stats")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "channel stats fetched successfully", stats)
}

// ChannelVideos handles GET /api/v1/dashboard/videos.
func (h DashboardHandler) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videos, err := h.Videos.ListByOwner(ctx, principal.ID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list channel videos", "error", err, "userId", principal.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch channel videos")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondJSON(ctx, w, http.StatusOK, "channel videos fetched successfully", videos)
}
