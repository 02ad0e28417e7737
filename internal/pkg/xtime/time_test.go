package xtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUnixMilliRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	require.Equal(t, now, FromUnixMilli(UnixMilli(now)))
}

func TestUnixMilliZero(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(0), UnixMilli(time.Time{}))
	require.True(t, FromUnixMilli(0).IsZero())
}
