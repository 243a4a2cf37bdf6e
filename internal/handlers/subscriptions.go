package handlers

import (
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// SubscriptionHandler implements the subscriber/channel relation.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}/toggle.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	channelID, ok := parseID(r.PathValue("channelId"))
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}

	if channelID == principal.ID {
		respondError(ctx, w, http.StatusBadRequest, "you cannot subscribe to yourself")
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel not found")
			return
		}
		logging.FromContext(ctx).Error("failed to load channel", "error", err, "channelId", channelID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to toggle subscription")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, principal.ID, channelID)
	if err != nil {
		if errors.Is(err, repositories.ErrForbiddenRelation) {
			respondError(ctx, w, http.StatusBadRequest, "you cannot subscribe to yourself")
			return
		}
		logging.FromContext(ctx).Error("failed to toggle subscription", "error", err, "channelId", channelID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to toggle subscription")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "subscription toggled successfully", map[string]bool{"subscribed": subscribed})
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID, ok := parseID(r.PathValue("channelId"))
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}

	subscribers, err := h.Subscriptions.Subscribers(ctx, channelID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list subscribers", "error", err, "channelId", channelID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch subscribers")
		return
	}
	if subscribers == nil {
		subscribers = []models.OwnerRef{}
	}

	respondJSON(ctx, w, http.StatusOK, "subscribers fetched successfully", subscribers)
}

// Channels handles GET /api/v1/subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) Channels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID, ok := parseID(r.PathValue("subscriberId"))
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid subscriber id")
		return
	}

	channels, err := h.Subscriptions.Channels(ctx, subscriberID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list subscribed channels", "error", err, "subscriberId", subscriberID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch subscribed channels")
		return
	}
	if channels == nil {
		channels = []models.OwnerRef{}
	}

	respondJSON(ctx, w, http.StatusOK, "subscribed channels fetched successfully", channels)
}
