package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/models"
)

func toggleVideoLike(t *testing.T, handler LikeHandler, user models.User, videoID, sentiment string) envelope {
	t.Helper()
	target := "/api/v1/likes/toggle/v/" + videoID
	if sentiment != "" {
		target += "?sentiment=" + sentiment
	}
	req := asPrincipal(httptest.NewRequest(http.MethodPost, target, nil), user)
	req.SetPathValue("videoId", videoID)
	rec := httptest.NewRecorder()

	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	return decodeEnvelope(t, rec)
}

func toggleState(t *testing.T, env envelope) string {
	t.Helper()
	var result toggleResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode toggle result: %v", err)
	}
	return result.State
}

func TestLikeHandlerToggleSequence(t *testing.T) {
	videos := newFakeVideoStore()
	video := seedVideo(videos, newID(), true)
	user := models.User{ID: newID()}

	handler := LikeHandler{
		Likes:    newFakeLikeStore(),
		Videos:   videos,
		Comments: newFakeCommentStore(),
		Tweets:   newFakeTweetStore(),
	}

	if state := toggleState(t, toggleVideoLike(t, handler, user, video.ID, "")); state != "liked" {
		t.Fatalf("first toggle should like, got %q", state)
	}
	if state := toggleState(t, toggleVideoLike(t, handler, user, video.ID, "")); state != "removed" {
		t.Fatalf("second toggle should remove, got %q", state)
	}
	if state := toggleState(t, toggleVideoLike(t, handler, user, video.ID, "dislike")); state != "disliked" {
		t.Fatalf("dislike toggle should dislike, got %q", state)
	}
	// Opposite sentiment flips the row instead of removing it.
	if state := toggleState(t, toggleVideoLike(t, handler, user, video.ID, "")); state != "liked" {
		t.Fatalf("like after dislike should flip to liked, got %q", state)
	}
}

func TestLikeHandlerToggleMissingTarget(t *testing.T) {
	handler := LikeHandler{
		Likes:    newFakeLikeStore(),
		Videos:   newFakeVideoStore(),
		Comments: newFakeCommentStore(),
		Tweets:   newFakeTweetStore(),
	}

	missing := newID()
	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/t/"+missing, nil), models.User{ID: newID()})
	req.SetPathValue("tweetId", missing)
	rec := httptest.NewRecorder()

	handler.ToggleTweet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestLikeHandlerLikedVideos(t *testing.T) {
	likes := newFakeLikeStore()
	likes.liked = []models.Video{{ID: newID(), Title: "kept"}}

	handler := LikeHandler{
		Likes:    likes,
		Videos:   newFakeVideoStore(),
		Comments: newFakeCommentStore(),
		Tweets:   newFakeTweetStore(),
	}

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil), models.User{ID: newID()})
	rec := httptest.NewRecorder()

	handler.LikedVideos(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var got []models.Video
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode videos: %v", err)
	}
	if len(got) != 1 || got[0].Title != "kept" {
		t.Fatalf("unexpected liked videos %+v", got)
	}
}
