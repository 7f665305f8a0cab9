package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rohitdas13/postdeck/internal/models"
)

type UserRepository interface {
	Get(ctx context.Context, userID string) (*models.User, error)
	Put(ctx context.Context, user *models.User) error
	Remove(ctx context.Context, userID string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT data FROM users WHERE id = $1`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		slog.Info(err.Error())
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Put(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		INSERT INTO users (id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = $2, updated_at = $3
	`
	_, err = r.db.ExecContext(ctx, query, user.ID, data, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *userRepository) Remove(ctx context.Context, userID string) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
