// Package chat is a minimal OpenAI-compatible chat-completions client used to
// verify a normalized credential descriptor end to end.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/looplj/qwenbroker/internal/httpclient"
	"github.com/looplj/qwenbroker/qwen"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Response struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

type Client struct {
	descriptor *qwen.Descriptor
	httpClient *httpclient.HttpClient
	headers    http.Header
}

type ClientParams struct {
	Descriptor *qwen.Descriptor

	// HTTPClient should be pre-configured with timeout settings if needed.
	HTTPClient *httpclient.HttpClient

	// Headers are merged into every outbound request, e.g. a User-Agent.
	// Credential and library-managed headers are never overridden this way.
	Headers http.Header
}

func NewClient(params ClientParams) *Client {
	hc := params.HTTPClient
	if hc == nil {
		hc = httpclient.NewHttpClient()
	}

	return &Client{
		descriptor: params.Descriptor,
		httpClient: hc,
		headers:    params.Headers,
	}
}

// CreateChatCompletion posts a completion request with bearer auth from the
// descriptor. An empty model falls back to the descriptor's model.
func (c *Client) CreateChatCompletion(ctx context.Context, req *Request) (*Response, error) {
	if c.descriptor == nil {
		return nil, errors.New("nil descriptor")
	}

	if req == nil || len(req.Messages) == 0 {
		return nil, errors.New("messages are empty")
	}

	if req.Model == "" {
		req.Model = c.descriptor.Model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	headers := http.Header{
		"Content-Type": []string{"application/json"},
		"Accept":       []string{"application/json"},
	}
	headers = httpclient.MergeHTTPHeaders(headers, c.headers)

	httpReq := &httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.descriptor.BaseURL + "/chat/completions",
		Headers: headers,
		Body:    body,
		Auth: &httpclient.AuthConfig{
			Type:   httpclient.AuthTypeBearer,
			APIKey: c.descriptor.APIKey,
		},
	}

	resp, err := c.httpClient.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	var chatResp Response
	if err := json.Unmarshal(resp.Body, &chatResp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}

	return &chatResp, nil
}

// FirstContent returns the first choice's message content, if any.
func (r *Response) FirstContent() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}

	return r.Choices[0].Message.Content
}
