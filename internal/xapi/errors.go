package xapi

import "fmt"

// AuthError means the platform rejected the credential itself (expired or
// revoked refresh token). The dispatch engine aborts the user's pass on it.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("x api auth error: %d %s", e.StatusCode, e.Message)
}

// SubmissionError means the platform failed to accept one post (rate limit,
// validation, network). It is scoped to that post only.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("x api submission error: %d %s", e.StatusCode, e.Message)
}
