package oauth

import (
	"encoding/json"
	"time"

	"github.com/looplj/qwenbroker/internal/pkg/xtime"
)

const (
	// RefreshBuffer guards against using a token that expires mid-flight.
	RefreshBuffer = 30 * time.Second

	// DefaultTokenType is assumed when the provider omits token_type.
	DefaultTokenType = "Bearer"
)

// Credentials is the on-disk credential record. It is created by the
// provider's login flow and mutated in place only by the refresh operation.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`

	// ExpiryDate is the access token expiry in epoch milliseconds.
	ExpiryDate int64 `json:"expiry_date,omitempty"`

	// ResourceURL is a provider-supplied endpoint override.
	ResourceURL string `json:"resource_url,omitempty"`
}

// ExpiresAt converts the epoch-millisecond expiry to a time.
func (c *Credentials) ExpiresAt() time.Time {
	return xtime.FromUnixMilli(c.ExpiryDate)
}

// IsValid reports whether the access token is still usable at now.
// A missing expiry is treated as expired, failing safe toward a refresh.
func (c *Credentials) IsValid(now time.Time) bool {
	if c == nil || c.ExpiryDate == 0 {
		return false
	}

	return now.UnixMilli() < c.ExpiryDate-RefreshBuffer.Milliseconds()
}

func (c *Credentials) ToJSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
