package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/looplj/qwenbroker/qwen"
)

func TestLoadDefaults(t *testing.T) {
	config, err := Load()
	require.NoError(t, err)

	require.Equal(t, qwen.TokenURL, config.TokenURL)
	require.Equal(t, qwen.ClientID, config.ClientID)
	require.Equal(t, qwen.DefaultBaseURL, config.BaseURL)
	require.Equal(t, qwen.DefaultModel, config.Model)
	require.Empty(t, config.CredentialsFile)
	require.Equal(t, 30*time.Second, config.Timeout)
	require.Equal(t, "info", config.Log.Level)
	require.Equal(t, "console", config.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("QWENBROKER_MODEL", "qwen3-max")
	t.Setenv("QWENBROKER_TIMEOUT", "5s")
	t.Setenv("QWENBROKER_CREDENTIALS_FILE", "~/alt/creds.json")
	t.Setenv("QWENBROKER_LOG_LEVEL", "debug")

	config, err := Load()
	require.NoError(t, err)

	require.Equal(t, "qwen3-max", config.Model)
	require.Equal(t, 5*time.Second, config.Timeout)
	require.Equal(t, "~/alt/creds.json", config.CredentialsFile)
	require.Equal(t, "debug", config.Log.Level)
}

func TestBrokerConfig(t *testing.T) {
	t.Parallel()

	config := Config{
		TokenURL:        "https://example.com/token",
		ClientID:        "client-1",
		BaseURL:         "https://example.com/api",
		Model:           "m",
		CredentialsFile: "/tmp/creds.json",
	}

	brokerConfig := config.BrokerConfig()
	require.Equal(t, "https://example.com/token", brokerConfig.TokenURL)
	require.Equal(t, "client-1", brokerConfig.ClientID)
	require.Equal(t, "https://example.com/api", brokerConfig.BaseURL)
	require.Equal(t, "m", brokerConfig.Model)
	require.Equal(t, "/tmp/creds.json", brokerConfig.CredentialsFile)
}
