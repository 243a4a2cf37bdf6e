package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/models"
)

func TestPlaylistHandlerCreateDuplicateName(t *testing.T) {
	playlists := newFakePlaylistStore()
	owner := models.User{ID: newID()}
	playlists.add(models.Playlist{ID: newID(), OwnerID: owner.ID, Name: "favorites"})

	handler := PlaylistHandler{Playlists: playlists, Videos: newFakeVideoStore()}

	body, _ := json.Marshal(playlistRequest{Name: "favorites"})
	req := asPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/playlist", bytes.NewReader(body)), owner)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate playlist name must return %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestPlaylistHandlerAddVideo(t *testing.T) {
	playlists := newFakePlaylistStore()
	videos := newFakeVideoStore()
	owner := models.User{ID: newID()}
	playlist := models.Playlist{ID: newID(), OwnerID: owner.ID, Name: "favorites"}
	playlists.add(playlist)
	video := seedVideo(videos, owner.ID, true)

	handler := PlaylistHandler{Playlists: playlists, Videos: videos}

	add := func() *httptest.ResponseRecorder {
		req := asPrincipal(httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/add/"+video.ID+"/"+playlist.ID, nil), owner)
		req.SetPathValue("videoId", video.ID)
		req.SetPathValue("playlistId", playlist.ID)
		rec := httptest.NewRecorder()
		handler.AddVideo(rec, req)
		return rec
	}

	if rec := add(); rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	// Adding the same video again is a client error, not a silent no-op.
	if rec := add(); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate add must return %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPlaylistHandlerAddVideoNotOwnedByCaller(t *testing.T) {
	playlists := newFakePlaylistStore()
	videos := newFakeVideoStore()
	owner := models.User{ID: newID()}
	playlist := models.Playlist{ID: newID(), OwnerID: owner.ID, Name: "favorites"}
	playlists.add(playlist)
	video := seedVideo(videos, newID(), true)

	handler := PlaylistHandler{Playlists: playlists, Videos: videos}

	req := asPrincipal(httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/add/"+video.ID+"/"+playlist.ID, nil), owner)
	req.SetPathValue("videoId", video.ID)
	req.SetPathValue("playlistId", playlist.ID)
	rec := httptest.NewRecorder()

	handler.AddVideo(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("adding someone else's video must return %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestPlaylistHandlerRemoveVideoNotInPlaylist(t *testing.T) {
	playlists := newFakePlaylistStore()
	videos := newFakeVideoStore()
	owner := models.User{ID: newID()}
	playlist := models.Playlist{ID: newID(), OwnerID: owner.ID, Name: "favorites"}
	playlists.add(playlist)
	video := seedVideo(videos, owner.ID, true)

	handler := PlaylistHandler{Playlists: playlists, Videos: videos}

	req := asPrincipal(httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/remove/"+video.ID+"/"+playlist.ID, nil), owner)
	req.SetPathValue("videoId", video.ID)
	req.SetPathValue("playlistId", playlist.ID)
	rec := httptest.NewRecorder()

	handler.RemoveVideo(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("removing an absent video must return %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPlaylistHandlerUpdateForbiddenForNonOwner(t *testing.T) {
	playlists := newFakePlaylistStore()
	playlist := models.Playlist{ID: newID(), OwnerID: newID(), Name: "favorites"}
	playlists.add(playlist)

	handler := PlaylistHandler{Playlists: playlists, Videos: newFakeVideoStore()}

	body, _ := json.Marshal(playlistRequest{Name: "stolen"})
	req := asPrincipal(httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/"+playlist.ID, bytes.NewReader(body)), models.User{ID: newID()})
	req.SetPathValue("playlistId", playlist.ID)
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
}

func TestPlaylistHandlerGetNotFound(t *testing.T) {
	handler := PlaylistHandler{Playlists: newFakePlaylistStore(), Videos: newFakeVideoStore()}

	missing := newID()
	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/playlist/"+missing, nil), models.User{ID: newID()})
	req.SetPathValue("playlistId", missing)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}
