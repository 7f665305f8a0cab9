package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	config "github.com/rohitdas13/postdeck/configs"
	"github.com/rohitdas13/postdeck/internal/models"
	"github.com/rohitdas13/postdeck/internal/repository"
	"github.com/rohitdas13/postdeck/internal/xapi"
	"golang.org/x/oauth2"
)

const authStateTTL = 5 * time.Minute

type AuthService interface {
	ConnectURL(ctx context.Context) (string, error)
	LoginCallback(ctx context.Context, code, state string) (string, error)
}

type authService struct {
	cfg    config.Config
	u      repository.UserRepository
	cr     repository.CredentialRepository
	st     repository.AuthStateRepository
	client xapi.Client
}

func NewAuthService(
	cfg config.Config,
	u repository.UserRepository,
	cr repository.CredentialRepository,
	st repository.AuthStateRepository,
	client xapi.Client) AuthService {
	return &authService{
		cfg:    cfg,
		u:      u,
		cr:     cr,
		st:     st,
		client: client,
	}
}

func (s *authService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.XClientID,
		ClientSecret: s.cfg.XClientSecret,
		RedirectURL:  s.cfg.XRedirectURI,
		Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://twitter.com/i/oauth2/authorize",
			TokenURL:  s.cfg.XAPIBaseURL + "/2/oauth2/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// ConnectURL builds the PKCE authorization URL and parks the verifier under
// a one-time state with a short expiry.
func (s *authService) ConnectURL(ctx context.Context) (string, error) {
	oauth2Config := s.oauthConfig()
	if oauth2Config.ClientID == "" || oauth2Config.RedirectURL == "" {
		err := errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return "", err
	}

	state, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	verifier := oauth2.GenerateVerifier()

	if err := s.st.Put(ctx, state, verifier, authStateTTL); err != nil {
		return "", err
	}

	return oauth2Config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// LoginCallback redeems the authorization code, fetches the X profile, and
// stores the profile and credential records. The credential write carries
// the complete token pair so nothing is ever half-replaced.
func (s *authService) LoginCallback(ctx context.Context, code, state string) (string, error) {
	if code == "" || state == "" {
		err := errors.New("code or state is empty")
		slog.Info(err.Error())
		return "", err
	}

	verifier, err := s.st.Take(ctx, state)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", errors.New("invalid or expired state")
		}
		return "", err
	}

	token, err := s.oauthConfig().Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("token exchange failed: %w", err)
	}

	userInfo, err := s.client.GetUserInfo(ctx, token.AccessToken)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()

	user := &models.User{
		ID:           userInfo.ID,
		Username:     userInfo.Username,
		DisplayName:  userInfo.Name,
		ProfileImage: userInfo.ProfileImageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing, err := s.u.Get(ctx, userInfo.ID); err == nil {
		user.CreatedAt = existing.CreatedAt
	}

	if err := s.u.Put(ctx, user); err != nil {
		return "", err
	}

	cred := &models.Credential{
		UserID:       userInfo.ID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		UpdatedAt:    now,
	}
	if err := s.cr.Put(ctx, cred); err != nil {
		return "", err
	}

	return user.ID, nil
}
