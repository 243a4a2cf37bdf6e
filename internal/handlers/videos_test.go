package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/models"
)

func seedVideo(store *fakeVideoStore, ownerID string, published bool) models.Video {
	video := models.Video{
		ID:           newID(),
		OwnerID:      ownerID,
		Title:        "launch day",
		Description:  "first upload",
		VideoURL:     "https://media.test/videos/launch.mp4",
		VideoKey:     "videos/launch.mp4",
		ThumbnailURL: "https://media.test/thumbnails/launch.png",
		ThumbnailKey: "thumbnails/launch.png",
		Duration:     12.5,
		IsPublished:  published,
	}
	store.add(video)
	return video
}

func TestVideoHandlerPublish(t *testing.T) {
	videos := newFakeVideoStore()
	media := newFakeMediaStore()
	handler := VideoHandler{Videos: videos, Media: media, Prober: fakeProber{duration: 42.25}}

	owner := models.User{ID: newID(), Username: "ada"}
	body, contentType := multipartBody(t,
		map[string]string{"title": "launch day", "description": "first upload"},
		map[string][2]string{
			"videoFile": {"launch.mp4", "mp4-bytes"},
			"thumbnail": {"launch.png", "png-bytes"},
		},
	)

	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/videos", body), owner)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var video models.Video
	if err := json.Unmarshal(env.Data, &video); err != nil {
		t.Fatalf("decode video: %v", err)
	}
	if video.Duration != 42.25 {
		t.Fatalf("expected probed duration, got %v", video.Duration)
	}
	if !video.IsPublished {
		t.Fatal("expected new video to be published")
	}
	if video.OwnerID != owner.ID {
		t.Fatalf("expected owner %s, got %s", owner.ID, video.OwnerID)
	}
	if len(media.uploads) != 2 {
		t.Fatalf("expected video and thumbnail uploads, got %d", len(media.uploads))
	}
}

func TestVideoHandlerPublishRejectsBadProbe(t *testing.T) {
	videos := newFakeVideoStore()
	handler := VideoHandler{Videos: videos, Media: newFakeMediaStore(), Prober: fakeProber{err: http.ErrBodyNotAllowed}}

	owner := models.User{ID: newID()}
	body, contentType := multipartBody(t,
		map[string]string{"title": "broken"},
		map[string][2]string{
			"videoFile": {"broken.mp4", "not-a-video"},
			"thumbnail": {"thumb.png", "png-bytes"},
		},
	)

	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/videos", body), owner)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
	if len(videos.videos) != 0 {
		t.Fatal("no record should be created when the probe fails")
	}
}

func TestVideoHandlerGetRecordsView(t *testing.T) {
	videos := newFakeVideoStore()
	owner := models.User{ID: newID()}
	viewer := models.User{ID: newID()}
	video := seedVideo(videos, owner.ID, true)

	handler := VideoHandler{Videos: videos, Media: newFakeMediaStore(), Prober: fakeProber{}}

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+video.ID, nil), viewer)
	req.SetPathValue("videoId", video.ID)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored := videos.videos[video.ID]
	if stored.Views != 1 {
		t.Fatalf("expected view count 1, got %d", stored.Views)
	}
	if len(videos.history[viewer.ID]) != 1 {
		t.Fatal("expected a watch history entry for the viewer")
	}
}

func TestVideoHandlerGetUnpublishedHiddenFromOthers(t *testing.T) {
	videos := newFakeVideoStore()
	owner := models.User{ID: newID()}
	stranger := models.User{ID: newID()}
	video := seedVideo(videos, owner.ID, false)

	handler := VideoHandler{Videos: videos, Media: newFakeMediaStore(), Prober: fakeProber{}}

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+video.ID, nil), stranger)
	req.SetPathValue("videoId", video.ID)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unpublished video must look missing to non-owners, got %d", rec.Code)
	}

	req = asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+video.ID, nil), owner)
	req.SetPathValue("videoId", video.ID)
	rec = httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("owner should still see the unpublished video, got %d", rec.Code)
	}
}

func TestVideoHandlerUpdateForbiddenForNonOwner(t *testing.T) {
	videos := newFakeVideoStore()
	owner := models.User{ID: newID()}
	stranger := models.User{ID: newID()}
	video := seedVideo(videos, owner.ID, true)

	handler := VideoHandler{Videos: videos, Media: newFakeMediaStore(), Prober: fakeProber{}}

	body, contentType := multipartBody(t, map[string]string{"title": "hijacked"}, nil)
	req := asPrincipal(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+video.ID, body), stranger)
	req.Header.Set("Content-Type", contentType)
	req.SetPathValue("videoId", video.ID)
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if videos.videos[video.ID].Title != "launch day" {
		t.Fatal("video must not change for non-owners")
	}
}

func TestVideoHandlerDeleteCleansUpInOrder(t *testing.T) {
	videos := newFakeVideoStore()
	media := newFakeMediaStore()
	owner := models.User{ID: newID()}
	video := seedVideo(videos, owner.ID, true)

	handler := VideoHandler{Videos: videos, Media: media, Prober: fakeProber{}}

	req := asPrincipal(httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+video.ID, nil), owner)
	req.SetPathValue("videoId", video.ID)
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	if len(videos.detached) != 1 || videos.detached[0] != video.ID {
		t.Fatal("playlist references must be detached first")
	}
	if len(media.deleted) != 2 || media.deleted[0] != video.ThumbnailKey || media.deleted[1] != video.VideoKey {
		t.Fatalf("unexpected media cleanup order: %v", media.deleted)
	}
	if _, ok := videos.videos[video.ID]; ok {
		t.Fatal("video record should be gone")
	}
}

func TestVideoHandlerTogglePublish(t *testing.T) {
	videos := newFakeVideoStore()
	owner := models.User{ID: newID()}
	video := seedVideo(videos, owner.ID, true)

	handler := VideoHandler{Videos: videos, Media: newFakeMediaStore(), Prober: fakeProber{}}

	req := asPrincipal(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/toggle/publish/"+video.ID, nil), owner)
	req.SetPathValue("videoId", video.ID)
	rec := httptest.NewRecorder()

	handler.TogglePublish(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if videos.videos[video.ID].IsPublished {
		t.Fatal("expected publish state to flip to false")
	}
}
