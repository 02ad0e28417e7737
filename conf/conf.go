// Package conf loads broker configuration from defaults, an optional
// qwenbroker.yml, and QWENBROKER_* environment variables, in that order.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/looplj/qwenbroker/internal/log"
	"github.com/looplj/qwenbroker/qwen"
)

type Config struct {
	// CredentialsFile overrides the default ~/.qwen/oauth_creds.json.
	CredentialsFile string `mapstructure:"credentials_file" json:"credentials_file,omitempty"`

	TokenURL string `mapstructure:"token_url" json:"token_url"`
	ClientID string `mapstructure:"client_id" json:"client_id"`
	BaseURL  string `mapstructure:"base_url" json:"base_url"`
	Model    string `mapstructure:"model" json:"model"`

	// Timeout bounds every outbound HTTP request.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`

	Log log.Config `mapstructure:"log" json:"log"`
}

func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("credentials_file", "")
	v.SetDefault("token_url", qwen.TokenURL)
	v.SetDefault("client_id", qwen.ClientID)
	v.SetDefault("base_url", qwen.DefaultBaseURL)
	v.SetDefault("model", qwen.DefaultModel)
	v.SetDefault("timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	v.SetConfigName("qwenbroker")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.qwen")

	v.SetEnvPrefix("QWENBROKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var config Config

	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return config, nil
}

// BrokerConfig maps the loaded configuration onto the broker's injected
// endpoint constants.
func (c Config) BrokerConfig() qwen.Config {
	return qwen.Config{
		TokenURL:        c.TokenURL,
		ClientID:        c.ClientID,
		BaseURL:         c.BaseURL,
		Model:           c.Model,
		CredentialsFile: c.CredentialsFile,
	}
}
