package oauth

import (
	"errors"
	"fmt"
)

// ErrMissingRefreshToken is returned when a refresh is attempted on a
// credential record that has no refresh token.
var ErrMissingRefreshToken = errors.New("refresh_token is empty")

// NotFoundError indicates the credential file does not exist. The user has
// to run the provider login flow first.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("credentials file not found: %s", e.Path)
}

// ParseError indicates the credential file exists but is not valid JSON.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid credentials file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EndpointError indicates the token endpoint answered with a non-2xx status
// and no recognizable OAuth error payload.
type EndpointError struct {
	StatusCode int
	Body       []byte
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("token endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// RefreshRejectedError indicates the provider rejected the refresh token
// semantically. The observed provider returns these with a 2xx status, so the
// error field is checked regardless of the status code.
type RefreshRejectedError struct {
	Code        string
	Description string
}

func (e *RefreshRejectedError) Error() string {
	return fmt.Sprintf("token refresh failed: %s - %s", e.Code, e.Description)
}

// NetworkError indicates a connection-level failure before any HTTP status
// was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("token endpoint request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
