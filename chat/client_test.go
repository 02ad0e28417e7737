package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/looplj/qwenbroker/internal/httpclient"
	"github.com/looplj/qwenbroker/qwen"
)

func TestCreateChatCompletion(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req Request

		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "qwen3-coder-plus", req.Model)
		require.Len(t, req.Messages, 1)
		require.Equal(t, "user", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "qwen3-coder-plus",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hello"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7}
		}`))
	}))
	t.Cleanup(server.Close)

	descriptor := &qwen.Descriptor{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
		Model:   "qwen3-coder-plus",
	}

	client := NewClient(ClientParams{
		Descriptor: descriptor,
		HTTPClient: httpclient.NewHttpClientWithClient(server.Client()),
	})

	resp, err := client.CreateChatCompletion(context.Background(), &Request{
		Messages: []Message{{Role: "user", Content: "Hello, world!"}},
	})
	require.NoError(t, err)
	require.Equal(t, "hello", resp.FirstContent())
	require.Equal(t, 7, resp.Usage.TotalTokens)
}

func TestCreateChatCompletionMergesHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "qwenbroker-test/1.0", r.Header.Get("User-Agent"))
		// Caller-supplied headers must not override the bearer credential.
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"index": 0, "message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	t.Cleanup(server.Close)

	descriptor := &qwen.Descriptor{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
		Model:   "qwen3-coder-plus",
	}

	client := NewClient(ClientParams{
		Descriptor: descriptor,
		HTTPClient: httpclient.NewHttpClientWithClient(server.Client()),
		Headers: http.Header{
			"User-Agent":    []string{"qwenbroker-test/1.0"},
			"Authorization": []string{"Bearer attacker"},
		},
	})

	resp, err := client.CreateChatCompletion(context.Background(), &Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Equal(t, "ok", resp.FirstContent())
}

func TestCreateChatCompletionValidation(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientParams{Descriptor: &qwen.Descriptor{}})

	_, err := client.CreateChatCompletion(context.Background(), nil)
	require.EqualError(t, err, "messages are empty")

	_, err = client.CreateChatCompletion(context.Background(), &Request{})
	require.EqualError(t, err, "messages are empty")

	nilClient := NewClient(ClientParams{})

	_, err = nilClient.CreateChatCompletion(context.Background(), &Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.EqualError(t, err, "nil descriptor")
}

func TestCreateChatCompletionUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	t.Cleanup(server.Close)

	descriptor := &qwen.Descriptor{APIKey: "bad", BaseURL: server.URL + "/v1", Model: "qwen3-coder-plus"}

	client := NewClient(ClientParams{
		Descriptor: descriptor,
		HTTPClient: httpclient.NewHttpClientWithClient(server.Client()),
	})

	_, err := client.CreateChatCompletion(context.Background(), &Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "with status 401")
}
