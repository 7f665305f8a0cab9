package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	config "github.com/rohitdas13/postdeck/configs"
	"github.com/rohitdas13/postdeck/internal/models"
	"github.com/rohitdas13/postdeck/internal/repository"
	"github.com/rohitdas13/postdeck/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Put(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Remove(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) Get(ctx context.Context, userID string) (*models.Credential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credential), args.Error(1)
}

func (m *MockCredentialRepository) Put(ctx context.Context, cred *models.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCredentialRepository) Remove(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockAuthStateRepository struct {
	mock.Mock
}

func (m *MockAuthStateRepository) Put(ctx context.Context, state, verifier string, ttl time.Duration) error {
	args := m.Called(ctx, state, verifier, ttl)
	return args.Error(0)
}

func (m *MockAuthStateRepository) Take(ctx context.Context, state string) (string, error) {
	args := m.Called(ctx, state)
	return args.String(0), args.Error(1)
}

type MockXClient struct {
	mock.Mock
}

func (m *MockXClient) SubmitPost(ctx context.Context, accessToken string, tweet *transfer.TweetRequest) (string, error) {
	args := m.Called(ctx, accessToken, tweet)
	return args.String(0), args.Error(1)
}

func (m *MockXClient) RefreshToken(ctx context.Context, refreshToken string) (*transfer.XTokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.XTokenResponse), args.Error(1)
}

func (m *MockXClient) GetUserInfo(ctx context.Context, accessToken string) (*transfer.XUserInfo, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.XUserInfo), args.Error(1)
}

func TestConnectURL(t *testing.T) {
	cfg := config.Config{
		XClientID:    "client-id",
		XRedirectURI: "http://localhost:3000/auth/callback",
		XAPIBaseURL:  "https://api.twitter.com",
	}

	states := new(MockAuthStateRepository)
	var storedState, storedVerifier string
	states.On("Put", mock.Anything, mock.Anything, mock.Anything, authStateTTL).Run(func(args mock.Arguments) {
		storedState = args.String(1)
		storedVerifier = args.String(2)
	}).Return(nil)

	s := NewAuthService(cfg, new(MockUserRepository), new(MockCredentialRepository), states, new(MockXClient))
	authURL, err := s.ConnectURL(context.Background())
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "twitter.com", parsed.Host)

	q := parsed.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, storedState, q.Get("state"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.NotEmpty(t, storedVerifier)
	assert.Contains(t, q.Get("scope"), "offline.access")
}

func TestConnectURLIncompleteConfig(t *testing.T) {
	s := NewAuthService(config.Config{}, new(MockUserRepository), new(MockCredentialRepository), new(MockAuthStateRepository), new(MockXClient))

	_, err := s.ConnectURL(context.Background())
	assert.Error(t, err)
}

func TestLoginCallback(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "the-verifier", r.PostForm.Get("code_verifier"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"access","refresh_token":"refresh","token_type":"bearer","expires_in":7200}`))
	}))
	defer tokenServer.Close()

	cfg := config.Config{
		XClientID:     "client-id",
		XClientSecret: "client-secret",
		XRedirectURI:  "http://localhost:3000/auth/callback",
		XAPIBaseURL:   tokenServer.URL,
	}

	states := new(MockAuthStateRepository)
	states.On("Take", mock.Anything, "the-state").Return("the-verifier", nil)

	client := new(MockXClient)
	client.On("GetUserInfo", mock.Anything, "access").Return(&transfer.XUserInfo{
		ID:       "12345",
		Name:     "Jess",
		Username: "jess",
	}, nil)

	users := new(MockUserRepository)
	users.On("Get", mock.Anything, "12345").Return(nil, repository.ErrNotFound)
	users.On("Put", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == "12345" && u.Username == "jess"
	})).Return(nil)

	creds := new(MockCredentialRepository)
	creds.On("Put", mock.Anything, mock.MatchedBy(func(c *models.Credential) bool {
		return c.UserID == "12345" && c.AccessToken == "access" && c.RefreshToken == "refresh" && !c.ExpiresAt.IsZero()
	})).Return(nil)

	s := NewAuthService(cfg, users, creds, states, client)
	userID, err := s.LoginCallback(context.Background(), "the-code", "the-state")

	require.NoError(t, err)
	assert.Equal(t, "12345", userID)
	users.AssertExpectations(t)
	creds.AssertExpectations(t)
}

func TestLoginCallbackExpiredState(t *testing.T) {
	states := new(MockAuthStateRepository)
	states.On("Take", mock.Anything, "stale").Return("", repository.ErrNotFound)

	s := NewAuthService(config.Config{}, new(MockUserRepository), new(MockCredentialRepository), states, new(MockXClient))
	_, err := s.LoginCallback(context.Background(), "code", "stale")

	assert.EqualError(t, err, "invalid or expired state")
}
