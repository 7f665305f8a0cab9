package xapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/rohitdas13/postdeck/configs"
	"github.com/rohitdas13/postdeck/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) Client {
	return NewClient(config.Config{
		XAPIBaseURL:   baseURL,
		XClientID:     "client-id",
		XClientSecret: "client-secret",
	})
}

func TestSubmitPost(t *testing.T) {
	var received transfer.TweetRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"t123","text":"hello"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	postedID, err := client.SubmitPost(context.Background(), "access-token", &transfer.TweetRequest{
		Text:  "hello",
		Media: &transfer.TweetMedia{MediaIDs: []string{"m1", "m2"}},
		Reply: &transfer.TweetReply{InReplyToTweetID: "t99"},
	})

	require.NoError(t, err)
	assert.Equal(t, "t123", postedID)
	assert.Equal(t, "hello", received.Text)
	assert.Equal(t, []string{"m1", "m2"}, received.Media.MediaIDs)
	assert.Equal(t, "t99", received.Reply.InReplyToTweetID)
}

func TestSubmitPostPlatformRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"title":"Too Many Requests"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SubmitPost(context.Background(), "access-token", &transfer.TweetRequest{Text: "hello"})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, http.StatusTooManyRequests, subErr.StatusCode)
	assert.Contains(t, subErr.Message, "Too Many Requests")
}

func TestRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/oauth2/token", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","token_type":"bearer","expires_in":7200}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	tokens, err := client.RefreshToken(context.Background(), "old-refresh")

	require.NoError(t, err)
	assert.Equal(t, "new-access", tokens.AccessToken)
	assert.Equal(t, "new-refresh", tokens.RefreshToken)
	assert.Equal(t, 7200, tokens.ExpiresIn)
}

func TestRefreshTokenRevoked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.RefreshToken(context.Background(), "revoked-refresh")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)
}

func TestGetUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/users/me", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"12345","name":"Jess","username":"jess","profile_image_url":"https://img.example/jess.png"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	info, err := client.GetUserInfo(context.Background(), "access-token")

	require.NoError(t, err)
	assert.Equal(t, "12345", info.ID)
	assert.Equal(t, "jess", info.Username)
	assert.Equal(t, "Jess", info.Name)
}
