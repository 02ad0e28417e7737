package httpclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskSensitiveHeaders(t *testing.T) {
	t.Parallel()

	headers := http.Header{
		"Authorization": []string{"Bearer secret"},
		"Content-Type":  []string{"application/json"},
	}

	masked := MaskSensitiveHeaders(headers)
	require.Equal(t, []string{"******"}, masked["Authorization"])
	require.Equal(t, []string{"application/json"}, masked["Content-Type"])

	// Original headers are untouched.
	require.Equal(t, []string{"Bearer secret"}, headers["Authorization"])
}

func TestMergeHTTPHeaders(t *testing.T) {
	t.Parallel()

	dest := http.Header{
		"Accept": []string{"application/json"},
	}
	src := http.Header{
		"Accept":        []string{"application/json", "text/plain"},
		"User-Agent":    []string{"qwenbroker-test"},
		"Authorization": []string{"Bearer leaked"},
		"Host":          []string{"example.com"},
	}

	merged := MergeHTTPHeaders(dest, src)
	require.Equal(t, []string{"application/json", "text/plain"}, merged["Accept"])
	require.Equal(t, []string{"qwenbroker-test"}, merged["User-Agent"])
	require.NotContains(t, merged, "Authorization")
	require.NotContains(t, merged, "Host")
}
