package qwen

import "strings"

// Descriptor is the normalized credential triple consumed by any
// OpenAI-compatible client. It is derived per call and never persisted.
type Descriptor struct {
	APIKey string `json:"api_key"`

	// BaseURL always carries an explicit scheme and ends in /v1.
	BaseURL string `json:"base_url"`

	Model string `json:"model"`
}

// normalizeBaseURL derives the API base URL from the record's resource_url,
// falling back to the configured default.
func normalizeBaseURL(resourceURL, fallback string) string {
	base := resourceURL
	if base == "" {
		base = fallback
	}

	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}

	return base
}
