package oauth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCredentialsIsValid(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		creds *Credentials
		want  bool
	}{
		{
			name:  "no expiry date",
			creds: &Credentials{AccessToken: "a"},
			want:  false,
		},
		{
			name:  "expired one minute ago",
			creds: &Credentials{AccessToken: "a", ExpiryDate: now.Add(-time.Minute).UnixMilli()},
			want:  false,
		},
		{
			name:  "valid outside buffer",
			creds: &Credentials{AccessToken: "a", ExpiryDate: now.Add(6 * time.Minute).UnixMilli()},
			want:  true,
		},
		{
			name:  "inside refresh buffer",
			creds: &Credentials{AccessToken: "a", ExpiryDate: now.Add(15 * time.Second).UnixMilli()},
			want:  false,
		},
		{
			name:  "exactly at buffer boundary",
			creds: &Credentials{AccessToken: "a", ExpiryDate: now.Add(RefreshBuffer).UnixMilli()},
			want:  false,
		},
		{
			name:  "nil credentials",
			creds: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.creds.IsValid(now))
		})
	}
}

func TestCredentialsExpiresAt(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	creds := &Credentials{ExpiryDate: expiry.UnixMilli()}
	require.Equal(t, expiry, creds.ExpiresAt())

	require.True(t, (&Credentials{}).ExpiresAt().IsZero())
}

func TestCredentialsToJSON(t *testing.T) {
	t.Parallel()

	creds := &Credentials{
		AccessToken:  "a",
		RefreshToken: "r",
		TokenType:    "Bearer",
		ExpiryDate:   1710000000000,
		ResourceURL:  "dashscope.aliyuncs.com/compatible-mode/v1",
	}

	raw, err := creds.ToJSON()
	require.NoError(t, err)

	var parsed Credentials

	require.NoError(t, json.Unmarshal([]byte(raw), &parsed))
	require.Equal(t, creds, &parsed)
}
