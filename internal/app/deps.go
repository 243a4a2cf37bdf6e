package app

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) (handlers.Dependencies, error) {
	tokens, err := auth.NewTokenManager(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	mediaStore, err := storage.NewS3Store(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	return handlers.Dependencies{
		Users:             repositories.NewPostgresUserRepository(pool),
		Tokens:            tokens,
		Videos:            repositories.NewPostgresVideoRepository(pool),
		Comments:          repositories.NewPostgresCommentRepository(pool),
		Tweets:            repositories.NewPostgresTweetRepository(pool),
		Likes:             repositories.NewPostgresLikeRepository(pool),
		Subscriptions:     repositories.NewPostgresSubscriptionRepository(pool),
		Playlists:         repositories.NewPostgresPlaylistRepository(pool),
		Stats:             repositories.NewPostgresStatsRepository(pool),
		Media:             mediaStore,
		Prober:            media.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout),
		DB:                pool,
		CredentialLimiter: middleware.NewIPRateLimiter(10, time.Minute, 10, 10*time.Minute),
		SecureCookies:     cfg.SecureCookies,
	}, nil
}
