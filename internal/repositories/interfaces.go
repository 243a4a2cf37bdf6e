package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// UserRepository defines the data access contract for users and their
// persisted refresh credential.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, url, key string) error
	UpdateCoverImage(ctx context.Context, id, url, key string) error
	SetRefreshToken(ctx context.Context, id, token string) error
	RotateRefreshToken(ctx context.Context, id, current, next string) error
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
}

// ListVideosParams filters and pages the public video listing.
type ListVideosParams struct {
	Query    string
	OwnerID  string
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}

// VideoRepository exposes data access for videos, views and watch history.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	TogglePublish(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	DetachFromPlaylists(ctx context.Context, videoID string) error
	List(ctx context.Context, params ListVideosParams) ([]models.Video, int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	RecordView(ctx context.Context, videoID, viewerID string) error
	WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error)
}

// CommentRepository exposes data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, error)
}

// TweetRepository exposes data access for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]models.Tweet, error)
}

// ToggleOutcome reports how a toggle mutation resolved.
type ToggleOutcome int

const (
	// ToggleRemoved means the existing row matched the request and was deleted.
	ToggleRemoved ToggleOutcome = iota
	// ToggleUpdated means the existing row's sentiment was flipped in place.
	ToggleUpdated
	// ToggleCreated means no row existed and one was inserted.
	ToggleCreated
)

// LikeRepository exposes the like/dislike toggle relation.
type LikeRepository interface {
	Toggle(ctx context.Context, userID string, kind models.LikeTarget, targetID string, isLike bool) (ToggleOutcome, error)
	LikedVideos(ctx context.Context, userID string) ([]models.Video, error)
}

// SubscriptionRepository exposes the subscriber/channel relation.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelID string) ([]models.OwnerRef, error)
	Channels(ctx context.Context, subscriberID string) ([]models.OwnerRef, error)
}

// PlaylistRepository exposes data access for playlists and their video sets.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	FindDetailed(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	ListForUser(ctx context.Context, userID string) ([]models.Playlist, error)
}

// StatsRepository computes read-time channel aggregates.
type StatsRepository interface {
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
}
