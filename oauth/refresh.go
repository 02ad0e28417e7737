package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/looplj/qwenbroker/internal/httpclient"
	"github.com/looplj/qwenbroker/internal/log"
	"github.com/looplj/qwenbroker/internal/pkg/xtime"
)

// TokenResponse is the success body of the token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// TokenError is the failure body of the token endpoint.
type TokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Refresh obtains a new access token using the refresh token. It is a pure
// transformation plus one network call; persisting the result is the caller's
// responsibility.
func (c *Credentials) Refresh(ctx context.Context, hc *httpclient.HttpClient, tokenURL, clientID string) (*Credentials, error) {
	if c == nil {
		return nil, errors.New("nil credentials")
	}

	if c.RefreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	if tokenURL == "" {
		return nil, errors.New("token URL is empty")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.RefreshToken)
	form.Set("client_id", clientID)

	req := &httpclient.Request{
		Method: http.MethodPost,
		URL:    tokenURL,
		Headers: http.Header{
			"Content-Type": []string{"application/x-www-form-urlencoded"},
			"Accept":       []string{"application/json"},
		},
		Body: []byte(form.Encode()),
	}

	resp, err := hc.Do(ctx, req)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			// The provider can reject semantically on any status; the error
			// field wins over the status code.
			if rejected := parseTokenError(statusErr.Body); rejected != nil {
				return nil, rejected
			}

			return nil, &EndpointError{StatusCode: statusErr.StatusCode, Body: statusErr.Body}
		}

		return nil, &NetworkError{Err: err}
	}

	if rejected := parseTokenError(resp.Body); rejected != nil {
		return nil, rejected
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(resp.Body, &tokenResp); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, errors.New("token refresh response missing access_token")
	}

	now := xtime.UTCNow()

	updated := *c
	updated.AccessToken = tokenResp.AccessToken

	updated.TokenType = tokenResp.TokenType
	if updated.TokenType == "" {
		updated.TokenType = DefaultTokenType
	}

	if tokenResp.RefreshToken != "" {
		updated.RefreshToken = tokenResp.RefreshToken
	}

	updated.ExpiryDate = xtime.UnixMilli(now) + int64(tokenResp.ExpiresIn)*1000

	log.Debug(ctx, "access token refreshed", log.Time("expires_at", updated.ExpiresAt()))

	return &updated, nil
}

// parseTokenError sniffs the body for an OAuth error payload. The body may be
// arbitrary bytes, so gjson is used instead of a strict unmarshal.
func parseTokenError(body []byte) *RefreshRejectedError {
	code := gjson.GetBytes(body, "error")
	if !code.Exists() || code.String() == "" {
		return nil
	}

	return &RefreshRejectedError{
		Code:        code.String(),
		Description: gjson.GetBytes(body, "error_description").String(),
	}
}
