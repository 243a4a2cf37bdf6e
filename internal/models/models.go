package models

import "time"

// User represents an account on the platform. Password and RefreshToken are
// never serialized; responses carry the Profile projection instead.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	Password      string
	AvatarURL     string
	AvatarKey     string
	CoverImageURL string
	CoverImageKey string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile is the sanitized view of a user returned by the API.
type Profile struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Profile returns the sanitized projection of the user.
func (u User) Profile() Profile {
	return Profile{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}

// ChannelProfile extends Profile with subscription rollups for channel pages.
type ChannelProfile struct {
	Profile
	SubscriberCount int64 `json:"subscriberCount"`
	SubscribedTo    int64 `json:"channelsSubscribedToCount"`
	IsSubscribed    bool  `json:"isSubscribed"`
}

// OwnerRef carries the owner fields embedded in enriched listings.
type OwnerRef struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// Video represents an uploaded video and its media locators.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoFile"`
	VideoKey     string    `json:"-"`
	ThumbnailURL string    `json:"thumbnail"`
	ThumbnailKey string    `json:"-"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Owner        *OwnerRef `json:"owner,omitempty"`
}

// Comment is a user comment on a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Owner     *OwnerRef `json:"owner,omitempty"`
}

// Tweet is a short text post owned by a user. Likes and Dislikes are filled
// by enriched listings only.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Likes     int64     `json:"likes"`
	Dislikes  int64     `json:"dislikes"`
}

// LikeTarget tags the entity kind a like row points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetTweet   LikeTarget = "tweet"
	LikeTargetComment LikeTarget = "comment"
)

// Like is one row per (user, target) pair; IsLike false records a dislike.
// Absence of a row is the neutral state.
type Like struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	TargetKind LikeTarget `json:"targetModel"`
	TargetID   string     `json:"targetId"`
	IsLike     bool       `json:"isLike"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Subscription is one row per (subscriber, channel) pair; existence means
// subscribed.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Playlist is an owner-scoped named collection of videos. Name is unique per
// owner; the video set is ordered and duplicate-free.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Owner       *OwnerRef `json:"owner,omitempty"`
	Videos      []Video   `json:"videos,omitempty"`
}

// WatchEntry records that a user watched a video.
type WatchEntry struct {
	Video     Video     `json:"video"`
	WatchedAt time.Time `json:"watchedAt"`
}

// ChannelStats aggregates a channel's videos, views, likes and subscribers.
// All counts are computed at read time from the relation tables.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
