package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for the
// like/dislike relation.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle applies one like/dislike transition for the (user, target) pair:
// a row with the same sentiment is deleted, a row with the opposite sentiment
// is flipped in place, and a missing row is inserted. Each step is a single
// statement against the UNIQUE (user_id, target_kind, target_id) key, so
// concurrent toggles from the same actor can never produce duplicate rows.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, userID string, kind models.LikeTarget, targetID string, isLike bool) (ToggleOutcome, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE user_id = $1 AND target_kind = $2 AND target_id = $3 AND is_like = $4
    `, userID, kind, targetID, isLike)
	if err != nil {
		return 0, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return ToggleRemoved, nil
	}

	tag, err = conn.Exec(ctx, `
        UPDATE likes SET is_like = $4
        WHERE user_id = $1 AND target_kind = $2 AND target_id = $3 AND is_like <> $4
    `, userID, kind, targetID, isLike)
	if err != nil {
		return 0, fmt.Errorf("flip like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return ToggleUpdated, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, user_id, target_kind, target_id, is_like, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id, target_kind, target_id)
        DO UPDATE SET is_like = EXCLUDED.is_like
    `, uuid.Must(uuid.NewV7()).String(), userID, kind, targetID, isLike, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert like: %w", err)
	}

	return ToggleCreated, nil
}

// LikedVideos returns the videos a user has liked, with owner profile fields.
// Likes whose video has since been deleted are skipped by the join.
func (r *PostgresLikeRepository) LikedVideos(ctx context.Context, userID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`, u.id, u.username, u.full_name, u.avatar_url
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.user_id = $1 AND l.target_kind = 'video' AND l.is_like
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideoWithOwner(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}

	return videos, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
