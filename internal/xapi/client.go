package xapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/rohitdas13/postdeck/configs"
	"github.com/rohitdas13/postdeck/internal/transfer"
)

// Client is the outbound X API surface the rest of the system depends on.
// It is a pure adapter: no scheduling or status logic lives here.
type Client interface {
	SubmitPost(ctx context.Context, accessToken string, tweet *transfer.TweetRequest) (string, error)
	RefreshToken(ctx context.Context, refreshToken string) (*transfer.XTokenResponse, error)
	GetUserInfo(ctx context.Context, accessToken string) (*transfer.XUserInfo, error)
}

type httpClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
}

func NewClient(cfg config.Config) Client {
	return &httpClient{
		baseURL:      strings.TrimRight(cfg.XAPIBaseURL, "/"),
		clientID:     cfg.XClientID,
		clientSecret: cfg.XClientSecret,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *httpClient) SubmitPost(ctx context.Context, accessToken string, tweet *transfer.TweetRequest) (string, error) {
	body, err := json.Marshal(tweet)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &SubmissionError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}

	var tweetResponse transfer.TweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&tweetResponse); err != nil {
		slog.Info(err.Error())
		return "", &SubmissionError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode tweet response: %v", err)}
	}
	if tweetResponse.Data.ID == "" {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Message: "tweet response missing id"}
	}

	return tweetResponse.Data.ID, nil
}

func (c *httpClient) RefreshToken(ctx context.Context, refreshToken string) (*transfer.XTokenResponse, error) {
	data := url.Values{}
	data.Add("grant_type", "refresh_token")
	data.Add("refresh_token", refreshToken)
	data.Add("client_id", c.clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basicAuth(c.clientID, c.clientSecret))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &AuthError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}

	var tokenResponse transfer.XTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResponse, nil
}

func (c *httpClient) GetUserInfo(ctx context.Context, accessToken string) (*transfer.XUserInfo, error) {
	endpoint := c.baseURL + "/2/users/me?user.fields=profile_image_url"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}

	var userResponse transfer.XUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&userResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}

	return &userResponse.Data, nil
}

func basicAuth(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}

func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(body))
}
