package qwen

const (
	OAuthBaseURL = "https://chat.qwen.ai"

	//nolint:gosec // endpoint URL, not a credential.
	TokenURL = OAuthBaseURL + "/api/v1/oauth2/token"

	ClientID = "f0304373b74a44d2b584a3fb70ca9e56"

	// DefaultBaseURL is used when the credential record carries no
	// resource_url override.
	DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

	DefaultModel = "qwen3-coder-plus"
)
