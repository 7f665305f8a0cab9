package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rohitdas13/postdeck/internal/models"
	"github.com/rohitdas13/postdeck/internal/repository"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id string) (*models.User, error)
	Disconnect(ctx context.Context, userID string) error
}

type userService struct {
	u  repository.UserRepository
	cr repository.CredentialRepository
}

func NewUserService(u repository.UserRepository, cr repository.CredentialRepository) UserService {
	return &userService{
		u:  u,
		cr: cr,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, id string) (*models.User, error) {
	user, err := s.u.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("error getting user info: %w", err)
	}
	return user, nil
}

// Disconnect drops the stored credential so the dispatch loop stops
// processing the user. The profile and posts are kept.
func (s *userService) Disconnect(ctx context.Context, userID string) error {
	if err := s.cr.Remove(ctx, userID); err != nil {
		return fmt.Errorf("error removing credential: %w", err)
	}
	return nil
}
