package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

func newTestTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	manager, err := auth.NewTokenManager("access-secret-for-tests", "refresh-secret-for-tests", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	return manager
}

// asPrincipal attaches the user to the request context the way RequireAuth
// would after verifying a token.
func asPrincipal(r *http.Request, user models.User) *http.Request {
	return r.WithContext(withPrincipal(r.Context(), user))
}

type fakeUserStore struct {
	users map[string]models.User

	// conflictOnCreate simulates losing a unique-index race after the
	// handler's existence pre-check passed.
	conflictOnCreate bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) add(user models.User) {
	s.users[user.ID] = user
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	if s.conflictOnCreate {
		return repositories.ErrConflict
	}
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (models.User, error) {
	for _, user := range s.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) UpdateDetails(_ context.Context, id, fullName, email string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	for _, other := range s.users {
		if other.ID != id && other.Email == email {
			return models.User{}, repositories.ErrConflict
		}
	}
	user.FullName = fullName
	user.Email = email
	s.users[id] = user
	return user, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordHash
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, id, url, key string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.AvatarURL = url
	user.AvatarKey = key
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) UpdateCoverImage(_ context.Context, id, url, key string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.CoverImageURL = url
	user.CoverImageKey = key
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) SetRefreshToken(_ context.Context, id, token string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) RotateRefreshToken(_ context.Context, id, current, next string) error {
	user, ok := s.users[id]
	if !ok || user.RefreshToken != current {
		return repositories.ErrNotFound
	}
	user.RefreshToken = next
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) ChannelProfile(_ context.Context, username, viewerID string) (models.ChannelProfile, error) {
	for _, user := range s.users {
		if user.Username == username {
			return models.ChannelProfile{Profile: user.Profile()}, nil
		}
	}
	return models.ChannelProfile{}, repositories.ErrNotFound
}

type fakeVideoStore struct {
	videos   map[string]models.Video
	history  map[string][]models.WatchEntry
	detached []string
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{
		videos:  make(map[string]models.Video),
		history: make(map[string][]models.WatchEntry),
	}
}

func (s *fakeVideoStore) add(video models.Video) {
	s.videos[video.ID] = video
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) Update(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) TogglePublish(_ context.Context, id string) (bool, error) {
	video, ok := s.videos[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	video.IsPublished = !video.IsPublished
	s.videos[id] = video
	return video.IsPublished, nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *fakeVideoStore) DetachFromPlaylists(_ context.Context, videoID string) error {
	s.detached = append(s.detached, videoID)
	return nil
}

func (s *fakeVideoStore) List(_ context.Context, params repositories.ListVideosParams) ([]models.Video, int64, error) {
	var out []models.Video
	for _, video := range s.videos {
		if !video.IsPublished {
			continue
		}
		if params.OwnerID != "" && video.OwnerID != params.OwnerID {
			continue
		}
		out = append(out, video)
	}
	return out, int64(len(out)), nil
}

func (s *fakeVideoStore) ListByOwner(_ context.Context, ownerID string) ([]models.Video, error) {
	var out []models.Video
	for _, video := range s.videos {
		if video.OwnerID == ownerID {
			out = append(out, video)
		}
	}
	return out, nil
}

func (s *fakeVideoStore) RecordView(_ context.Context, videoID, viewerID string) error {
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[videoID] = video
	s.history[viewerID] = append(s.history[viewerID], models.WatchEntry{Video: video, WatchedAt: time.Now()})
	return nil
}

func (s *fakeVideoStore) WatchHistory(_ context.Context, userID string) ([]models.WatchEntry, error) {
	return s.history[userID], nil
}

type fakeCommentStore struct {
	comments map[string]models.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]models.Comment)}
}

func (s *fakeCommentStore) add(comment models.Comment) {
	s.comments[comment.ID] = comment
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStore) UpdateContent(_ context.Context, id, content string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return comment, nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *fakeCommentStore) ListForVideo(_ context.Context, videoID string, page, limit int) ([]models.Comment, error) {
	var out []models.Comment
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			out = append(out, comment)
		}
	}
	return out, nil
}

type fakeTweetStore struct {
	tweets map[string]models.Tweet
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *fakeTweetStore) add(tweet models.Tweet) {
	s.tweets[tweet.ID] = tweet
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) UpdateContent(_ context.Context, id, content string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

func (s *fakeTweetStore) ListForUser(_ context.Context, userID string) ([]models.Tweet, error) {
	var out []models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == userID {
			out = append(out, tweet)
		}
	}
	return out, nil
}

type fakeLikeStore struct {
	likes map[string]bool // key -> isLike
	liked []models.Video
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[string]bool)}
}

func likeKey(userID string, kind models.LikeTarget, targetID string) string {
	return fmt.Sprintf("%s|%s|%s", userID, kind, targetID)
}

func (s *fakeLikeStore) Toggle(_ context.Context, userID string, kind models.LikeTarget, targetID string, isLike bool) (repositories.ToggleOutcome, error) {
	key := likeKey(userID, kind, targetID)
	current, exists := s.likes[key]
	switch {
	case exists && current == isLike:
		delete(s.likes, key)
		return repositories.ToggleRemoved, nil
	case exists:
		s.likes[key] = isLike
		return repositories.ToggleUpdated, nil
	default:
		s.likes[key] = isLike
		return repositories.ToggleCreated, nil
	}
}

func (s *fakeLikeStore) LikedVideos(_ context.Context, userID string) ([]models.Video, error) {
	return s.liked, nil
}

type fakeSubscriptionStore struct {
	pairs map[string]bool
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{pairs: make(map[string]bool)}
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, repositories.ErrForbiddenRelation
	}
	key := subscriberID + "|" + channelID
	if s.pairs[key] {
		delete(s.pairs, key)
		return false, nil
	}
	s.pairs[key] = true
	return true, nil
}

func (s *fakeSubscriptionStore) Subscribers(_ context.Context, channelID string) ([]models.OwnerRef, error) {
	return nil, nil
}

func (s *fakeSubscriptionStore) Channels(_ context.Context, subscriberID string) ([]models.OwnerRef, error) {
	return nil, nil
}

type fakePlaylistStore struct {
	playlists map[string]models.Playlist
	members   map[string]map[string]bool
}

func newFakePlaylistStore() *fakePlaylistStore {
	return &fakePlaylistStore{
		playlists: make(map[string]models.Playlist),
		members:   make(map[string]map[string]bool),
	}
}

func (s *fakePlaylistStore) add(playlist models.Playlist) {
	s.playlists[playlist.ID] = playlist
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	for _, existing := range s.playlists {
		if existing.OwnerID == playlist.OwnerID && existing.Name == playlist.Name {
			return repositories.ErrConflict
		}
	}
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *fakePlaylistStore) FindDetailed(ctx context.Context, id string) (models.Playlist, error) {
	return s.FindByID(ctx, id)
}

func (s *fakePlaylistStore) Update(_ context.Context, id, name, description string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	for _, other := range s.playlists {
		if other.ID != id && other.OwnerID == playlist.OwnerID && other.Name == name {
			return models.Playlist{}, repositories.ErrConflict
		}
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	if s.members[playlistID] == nil {
		s.members[playlistID] = make(map[string]bool)
	}
	if s.members[playlistID][videoID] {
		return repositories.ErrConflict
	}
	s.members[playlistID][videoID] = true
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	if !s.members[playlistID][videoID] {
		return repositories.ErrNotFound
	}
	delete(s.members[playlistID], videoID)
	return nil
}

func (s *fakePlaylistStore) ListForUser(_ context.Context, userID string) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.OwnerID == userID {
			out = append(out, playlist)
		}
	}
	return out, nil
}

type fakeStatsStore struct {
	stats models.ChannelStats
}

func (s *fakeStatsStore) ChannelStats(_ context.Context, channelID string) (models.ChannelStats, error) {
	return s.stats, nil
}

type fakeMediaStore struct {
	uploads    map[string]string // key -> content type
	deleted    []string
	failUpload bool
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{uploads: make(map[string]string)}
}

func (s *fakeMediaStore) Upload(_ context.Context, key, contentType string, r io.Reader) (storage.Object, error) {
	if s.failUpload {
		return storage.Object{}, fmt.Errorf("upload rejected")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return storage.Object{}, err
	}
	s.uploads[key] = contentType
	return storage.Object{URL: "https://media.test/" + key, Key: key}, nil
}

func (s *fakeMediaStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.uploads, key)
	return nil
}

type fakeProber struct {
	duration float64
	err      error
}

func (p fakeProber) Duration(_ context.Context, path string) (float64, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.duration, nil
}
