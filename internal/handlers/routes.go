package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Everything
// under /api/v1 except registration, login and token refresh requires an
// authenticated principal.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{DB: deps.DB}
	users := UserHandler{
		Users:         deps.Users,
		Tokens:        deps.Tokens,
		Videos:        deps.Videos,
		Media:         deps.Media,
		Limiter:       deps.CredentialLimiter,
		SecureCookies: deps.SecureCookies,
	}
	videos := VideoHandler{Videos: deps.Videos, Media: deps.Media, Prober: deps.Prober}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	tweets := TweetHandler{Tweets: deps.Tweets, Users: deps.Users}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos}
	dashboard := DashboardHandler{Stats: deps.Stats, Videos: deps.Videos}

	protect := RequireAuth(deps.Users, deps.Tokens)
	authed := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, protect(handler))
	}

	mux.HandleFunc("GET /healthz", health.Check)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.Refresh)
	authed("POST /api/v1/users/logout", users.Logout)
	authed("PATCH /api/v1/users/update-password", users.ChangePassword)
	authed("GET /api/v1/users/current-user", users.CurrentUser)
	authed("PATCH /api/v1/users/update-details", users.UpdateDetails)
	authed("PATCH /api/v1/users/update-avatar", users.UpdateAvatar)
	authed("PATCH /api/v1/users/update-cover-image", users.UpdateCoverImage)
	authed("GET /api/v1/users/channel/{username}", users.ChannelProfile)
	authed("GET /api/v1/users/history", users.WatchHistory)

	authed("GET /api/v1/videos", videos.List)
	authed("POST /api/v1/videos", videos.Publish)
	authed("GET /api/v1/videos/{videoId}", videos.Get)
	authed("PATCH /api/v1/videos/{videoId}", videos.Update)
	authed("DELETE /api/v1/videos/{videoId}", videos.Delete)
	authed("PATCH /api/v1/videos/toggle/publish/{videoId}", videos.TogglePublish)

	authed("GET /api/v1/comments/{videoId}", comments.ListForVideo)
	authed("POST /api/v1/comments/{videoId}", comments.Create)
	authed("PATCH /api/v1/comments/c/{commentId}", comments.Update)
	authed("DELETE /api/v1/comments/c/{commentId}", comments.Delete)

	authed("POST /api/v1/tweets", tweets.Create)
	authed("GET /api/v1/tweets/user/{userId}", tweets.ListForUser)
	authed("PATCH /api/v1/tweets/{tweetId}", tweets.Update)
	authed("DELETE /api/v1/tweets/{tweetId}", tweets.Delete)

	authed("POST /api/v1/likes/toggle/v/{videoId}", likes.ToggleVideo)
	authed("POST /api/v1/likes/toggle/c/{commentId}", likes.ToggleComment)
	authed("POST /api/v1/likes/toggle/t/{tweetId}", likes.ToggleTweet)
	authed("GET /api/v1/likes/videos", likes.LikedVideos)

	authed("POST /api/v1/subscriptions/c/{channelId}/toggle", subscriptions.Toggle)
	authed("GET /api/v1/subscriptions/c/{channelId}", subscriptions.Subscribers)
	authed("GET /api/v1/subscriptions/u/{subscriberId}", subscriptions.Channels)

	authed("POST /api/v1/playlist", playlists.Create)
	authed("GET /api/v1/playlist/user/{userId}", playlists.ListForUser)
	authed("GET /api/v1/playlist/{playlistId}", playlists.Get)
	authed("PATCH /api/v1/playlist/{playlistId}", playlists.Update)
	authed("DELETE /api/v1/playlist/{playlistId}", playlists.Delete)
	authed("PATCH /api/v1/playlist/add/{videoId}/{playlistId}", playlists.AddVideo)
	authed("PATCH /api/v1/playlist/remove/{videoId}/{playlistId}", playlists.RemoveVideo)

	authed("GET /api/v1/dashboard/stats", dashboard.ChannelStats)
	authed("GET /api/v1/dashboard/videos", dashboard.ChannelVideos)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users             UserStore
	Tokens            TokenManager
	Videos            VideoStore
	Comments          CommentStore
	Tweets            TweetStore
	Likes             LikeStore
	Subscriptions     SubscriptionStore
	Playlists         PlaylistStore
	Stats             StatsStore
	Media             MediaStore
	Prober            DurationProber
	DB                Pinger
	CredentialLimiter RateLimiter
	SecureCookies     bool
}
