package models

import "time"

// Credential is the OAuth token pair used to submit posts for one user.
// Tokens are encrypted at rest by the repository layer; everywhere else
// they are plaintext.
type Credential struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
