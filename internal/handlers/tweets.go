package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const tweetMaxLength = 280

// TweetHandler implements short text posts.
type TweetHandler struct {
	Tweets TweetStore
	Users  UserStore
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	content, ok := h.readContent(w, r)
	if !ok {
		return
	}

	now := time.Now().UTC()
	tweet := models.Tweet{
		ID:        newID(),
		OwnerID:   principal.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		logging.FromContext(ctx).Error("failed to create tweet", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create tweet")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, "tweet created successfully", tweet)
}

// ListForUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := parseID(r.PathValue("userId"))
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid user id")
		return
	}

	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		logging.FromContext(ctx).Error("failed to load user for tweets", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch tweets")
		return
	}

	tweets, err := h.Tweets.ListForUser(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list tweets", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch tweets")
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	respondJSON(ctx, w, http.StatusOK, "tweets fetched successfully", tweets)
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, ok := h.ownedTweet(w, r)
	if !ok {
		return
	}

	content, ok := h.readContent(w, r)
	if !ok {
		return
	}

	updated, err := h.Tweets.UpdateContent(ctx, tweet.ID, content)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "tweet not found")
			return
		}
		logging.FromContext(ctx).Error("failed to update tweet", "error", err, "tweetId", tweet.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update tweet")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "tweet updated successfully", updated)
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, ok := h.ownedTweet(w, r)
	if !ok {
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "tweet not found")
			return
		}
		logging.FromContext(ctx).Error("failed to delete tweet", "error", err, "tweetId", tweet.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete tweet")
		return
	}

	respondJSON(ctx, w, http.StatusOK, "tweet deleted successfully", nil)
}

func (h TweetHandler) readContent(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return "", false
	}
	if len(content) > tweetMaxLength {
		respondError(ctx, w, http.StatusBadRequest, "content exceeds maximum length")
		return "", false
	}
	return content, true
}

func (h TweetHandler) ownedTweet(w http.ResponseWriter, r *http.Request) (models.Tweet, bool) {
	ctx := r.Context()

	principal, ok := principalFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return models.Tweet{}, false
	}

	tweetID, ok := parseID(r.PathValue("tweetId"))
	if !ok {
		respondError(ctx, w, http.StatusBadRequest, "invalid tweet id")
		return models.Tweet{}, false
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "tweet not found")
			return models.Tweet{}, false
		}
		logging.FromContext(ctx).Error("failed to load tweet", "error", err, "tweetId", tweetID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch tweet")
		return models.Tweet{}, false
	}

	if tweet.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to modify this tweet")
		return models.Tweet{}, false
	}

	return tweet, true
}
