package qwen

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/looplj/qwenbroker/internal/httpclient"
	"github.com/looplj/qwenbroker/internal/log"
	"github.com/looplj/qwenbroker/internal/pkg/xtime"
	"github.com/looplj/qwenbroker/oauth"
)

// Config holds the endpoint constants for a Broker instance. Keeping them
// injected instead of process-wide lets tests substitute endpoints without
// touching the environment.
type Config struct {
	TokenURL string `json:"token_url,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
	Model    string `json:"model,omitempty"`

	// CredentialsFile overrides the default ~/.qwen/oauth_creds.json.
	// Absolute and ~/ relative paths are accepted.
	CredentialsFile string `json:"credentials_file,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		TokenURL: TokenURL,
		ClientID: ClientID,
		BaseURL:  DefaultBaseURL,
		Model:    DefaultModel,
	}
}

// Broker manages the credential lifecycle: load, validate, refresh when
// stale, persist, normalize. It performs no background work; every state
// transition happens inside an explicit call.
type Broker struct {
	config     Config
	httpClient *httpclient.HttpClient
	sf         singleflight.Group
	now        func() time.Time
}

func NewBroker(config Config, hc *httpclient.HttpClient) *Broker {
	defaults := DefaultConfig()

	if config.TokenURL == "" {
		config.TokenURL = defaults.TokenURL
	}

	if config.ClientID == "" {
		config.ClientID = defaults.ClientID
	}

	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}

	if config.Model == "" {
		config.Model = defaults.Model
	}

	if hc == nil {
		hc = httpclient.NewHttpClient()
	}

	return &Broker{
		config:     config,
		httpClient: hc,
		now:        xtime.UTCNow,
	}
}

// GetCredentials returns a normalized descriptor backed by a fresh access
// token, refreshing and persisting the record first when needed.
func (b *Broker) GetCredentials(ctx context.Context) (*Descriptor, error) {
	path, err := oauth.ResolvePath(b.config.CredentialsFile)
	if err != nil {
		return nil, err
	}

	creds, err := oauth.Load(path)
	if err != nil {
		return nil, err
	}

	if !creds.IsValid(b.now()) {
		creds, err = b.refreshAndPersist(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	return &Descriptor{
		APIKey:  creds.AccessToken,
		BaseURL: normalizeBaseURL(creds.ResourceURL, b.config.BaseURL),
		Model:   b.config.Model,
	}, nil
}

// Status loads the current record without refreshing it.
func (b *Broker) Status(ctx context.Context) (*oauth.Credentials, error) {
	path, err := oauth.ResolvePath(b.config.CredentialsFile)
	if err != nil {
		return nil, err
	}

	return oauth.Load(path)
}

// Refresh forces a token refresh and persists the result regardless of the
// current record's validity.
func (b *Broker) Refresh(ctx context.Context) (*oauth.Credentials, error) {
	path, err := oauth.ResolvePath(b.config.CredentialsFile)
	if err != nil {
		return nil, err
	}

	var fresh *oauth.Credentials

	err = oauth.WithLock(path, func() error {
		current, err := oauth.Load(path)
		if err != nil {
			return err
		}

		fresh, err = b.refreshLocked(ctx, current, path)

		return err
	})
	if err != nil {
		return nil, err
	}

	return fresh, nil
}

// refreshAndPersist runs the refresh-then-save sequence once per concurrent
// burst (singleflight) and under an advisory file lock across processes.
// Another process may have refreshed in the meantime, so the record is
// re-checked after the lock is acquired.
func (b *Broker) refreshAndPersist(ctx context.Context, path string) (*oauth.Credentials, error) {
	v, err, _ := b.sf.Do(path, func() (any, error) {
		var fresh *oauth.Credentials

		err := oauth.WithLock(path, func() error {
			current, err := oauth.Load(path)
			if err != nil {
				return err
			}

			if current.IsValid(b.now()) {
				fresh = current
				return nil
			}

			fresh, err = b.refreshLocked(ctx, current, path)

			return err
		})

		return fresh, err
	})
	if err != nil {
		return nil, err
	}

	fresh, ok := v.(*oauth.Credentials)
	if !ok {
		return nil, fmt.Errorf("singleflight returned unexpected type %T", v)
	}

	return fresh, nil
}

func (b *Broker) refreshLocked(ctx context.Context, current *oauth.Credentials, path string) (*oauth.Credentials, error) {
	fresh, err := current.Refresh(ctx, b.httpClient, b.config.TokenURL, b.config.ClientID)
	if err != nil {
		// The on-disk record stays exactly as loaded.
		return nil, err
	}

	if err := oauth.Save(fresh, path); err != nil {
		return nil, err
	}

	log.Debug(ctx, "credentials refreshed and persisted",
		log.String("path", path),
		log.Time("expires_at", fresh.ExpiresAt()),
	)

	return fresh, nil
}
