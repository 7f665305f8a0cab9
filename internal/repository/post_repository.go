package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rohitdas13/postdeck/internal/models"
)

// PostRepository stores each user's posts as one collection record. There is
// no per-post update primitive: callers read the full collection, mutate it
// in memory, and write it back, accepting last-writer-wins when the dispatch
// loop and a live edit touch the same user concurrently.
type PostRepository interface {
	ListAll(ctx context.Context, userID string) ([]models.Post, error)
	ReplaceAll(ctx context.Context, userID string, posts []models.Post) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) ListAll(ctx context.Context, userID string) ([]models.Post, error) {
	query := `SELECT data FROM post_collections WHERE user_id = $1`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return []models.Post{}, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ReplaceAll(ctx context.Context, userID string, posts []models.Post) error {
	if posts == nil {
		posts = []models.Post{}
	}

	data, err := json.Marshal(posts)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		INSERT INTO post_collections (user_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET data = $2, updated_at = $3
	`
	_, err = r.db.ExecContext(ctx, query, userID, data, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
