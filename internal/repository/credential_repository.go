package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rohitdas13/postdeck/internal/models"
	"github.com/rohitdas13/postdeck/pkg/utils"
)

// CredentialRepository stores one credential record per user. Put always
// replaces the whole record, so a token refresh swaps access token, refresh
// token, and expiry in a single write.
type CredentialRepository interface {
	Get(ctx context.Context, userID string) (*models.Credential, error)
	Put(ctx context.Context, cred *models.Credential) error
	ListUserIDs(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, userID string) error
}

type credentialRepository struct {
	db        *sql.DB
	secretKey string
}

func NewCredentialRepository(db *sql.DB, secretKey string) CredentialRepository {
	return &credentialRepository{db: db, secretKey: secretKey}
}

func (r *credentialRepository) Get(ctx context.Context, userID string) (*models.Credential, error) {
	query := `SELECT data FROM credentials WHERE user_id = $1`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		slog.Info(err.Error())
		return nil, err
	}

	var cred models.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	accessToken, err := utils.Decrypt(cred.AccessToken, []byte(r.secretKey))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	cred.AccessToken = accessToken

	if cred.RefreshToken != "" {
		refreshToken, err := utils.Decrypt(cred.RefreshToken, []byte(r.secretKey))
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		cred.RefreshToken = refreshToken
	}

	return &cred, nil
}

func (r *credentialRepository) Put(ctx context.Context, cred *models.Credential) error {
	record := *cred

	encryptedAccessToken, err := utils.Encrypt([]byte(record.AccessToken), []byte(r.secretKey))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	record.AccessToken = encryptedAccessToken

	if record.RefreshToken != "" {
		encryptedRefreshToken, err := utils.Encrypt([]byte(record.RefreshToken), []byte(r.secretKey))
		if err != nil {
			slog.Info(err.Error())
			return err
		}
		record.RefreshToken = encryptedRefreshToken
	}

	data, err := json.Marshal(record)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		INSERT INTO credentials (user_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET data = $2, updated_at = $3
	`
	_, err = r.db.ExecContext(ctx, query, record.UserID, data, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *credentialRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	query := `SELECT user_id FROM credentials ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		userIDs = append(userIDs, userID)
	}
	return userIDs, rows.Err()
}

func (r *credentialRepository) Remove(ctx context.Context, userID string) error {
	query := `DELETE FROM credentials WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
