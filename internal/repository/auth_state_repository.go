package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// AuthStateRepository holds short-lived PKCE state during the OAuth
// handshake. Take removes the record so a state can only be redeemed once.
type AuthStateRepository interface {
	Put(ctx context.Context, state, verifier string, ttl time.Duration) error
	Take(ctx context.Context, state string) (string, error)
}

type authStateRepository struct {
	db *sql.DB
}

func NewAuthStateRepository(db *sql.DB) AuthStateRepository {
	return &authStateRepository{db: db}
}

func (r *authStateRepository) Put(ctx context.Context, state, verifier string, ttl time.Duration) error {
	query := `
		INSERT INTO oauth_states (state, verifier, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, state, verifier, time.Now().Add(ttl))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *authStateRepository) Take(ctx context.Context, state string) (string, error) {
	query := `
		DELETE FROM oauth_states
		WHERE state = $1 AND expires_at > $2
		RETURNING verifier
	`

	var verifier string
	err := r.db.QueryRowContext(ctx, query, state, time.Now()).Scan(&verifier)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		slog.Info(err.Error())
		return "", err
	}
	return verifier, nil
}
