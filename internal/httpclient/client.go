package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/looplj/qwenbroker/internal/log"
)

// DefaultTimeout bounds every outbound request. The upstream token and chat
// endpoints do not stream, so a flat deadline is enough.
const DefaultTimeout = 30 * time.Second

// StatusError is returned by Do when the upstream answers with a non-2xx
// status. The body is preserved so callers can inspect provider error payloads.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s - %s with status %s", e.Method, e.URL, e.Status)
}

type HttpClient struct {
	client *http.Client
}

func NewHttpClient() *HttpClient {
	return NewHttpClientWithClient(&http.Client{Timeout: DefaultTimeout})
}

// NewHttpClientWithClient wraps a pre-configured client, e.g. one from
// httptest.Server or with custom proxy/timeout settings.
func NewHttpClientWithClient(client *http.Client) *HttpClient {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &HttpClient{client: client}
}

// Do executes the request and reads the full response body.
// A non-2xx status is returned as a *StatusError with a nil Response.
func (c *HttpClient) Do(ctx context.Context, request *Request) (*Response, error) {
	httpReq, err := c.BuildHttpRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	log.Debug(ctx, "sending request",
		log.String("method", request.Method),
		log.String("url", request.URL),
		log.Any("headers", MaskSensitiveHeaders(httpReq.Header)),
	)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     request.Method,
			URL:        request.URL,
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       body,
		}
	}

	return &Response{
		StatusCode:  httpResp.StatusCode,
		Headers:     httpResp.Header,
		Body:        body,
		RawResponse: httpResp,
	}, nil
}

// BuildHttpRequest converts a Request into a *http.Request, applying query
// parameters and authentication.
func (c *HttpClient) BuildHttpRequest(ctx context.Context, request *Request) (*http.Request, error) {
	var body io.Reader
	if len(request.Body) > 0 {
		body = bytes.NewReader(request.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, request.Method, request.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if len(request.Query) > 0 {
		q := httpReq.URL.Query()
		for k, values := range request.Query {
			for _, v := range values {
				q.Add(k, v)
			}
		}

		httpReq.URL.RawQuery = q.Encode()
	}

	for k, values := range request.Headers {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	if request.Auth != nil {
		if err := applyAuth(httpReq.Header, request.Auth); err != nil {
			return nil, fmt.Errorf("failed to apply authentication: %w", err)
		}
	}

	return httpReq, nil
}

func applyAuth(headers http.Header, auth *AuthConfig) error {
	switch auth.Type {
	case AuthTypeBearer:
		if auth.APIKey == "" {
			return fmt.Errorf("bearer auth requires an api key")
		}

		headers.Set("Authorization", "Bearer "+auth.APIKey)
	case AuthTypeAPIKey:
		if auth.APIKey == "" {
			return fmt.Errorf("api_key auth requires an api key")
		}

		headerKey := auth.HeaderKey
		if headerKey == "" {
			headerKey = "X-Api-Key"
		}

		headers.Set(headerKey, auth.APIKey)
	case "":
		// No auth configured.
	default:
		return fmt.Errorf("unsupported auth type: %s", auth.Type)
	}

	return nil
}
