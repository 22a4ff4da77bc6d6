package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/pkg/errors"
)

func TestCompatClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen3-max", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		resp := openAIResponse{
			Model: req.Model,
			Choices: []openAIChoice{{
				Message:      openAIMessage{Role: "assistant", Content: "hello"},
				FinishReason: "stop",
			}},
			Usage: Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newCompatClient(server.URL, "test-key", 5*time.Second, nil)

	resp, err := client.chat(context.Background(), ChatRequest{
		Model: "qwen3-max",
		Messages: []Message{
			{Role: RoleSystem, Content: "you are helpful"},
			{Role: RoleUser, Content: "hi"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, FinishReasonStop, resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestCompatClient_ChatToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "get_stock_price", req.Tools[0].Function.Name)

		tc := openAIToolCall{ID: "call_1", Type: "function"}
		tc.Function.Name = "get_stock_price"
		tc.Function.Arguments = `{"symbol":"600519"}`

		resp := openAIResponse{
			Choices: []openAIChoice{{
				Message:      openAIMessage{Role: "assistant", ToolCalls: []openAIToolCall{tc}},
				FinishReason: "tool_calls",
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newCompatClient(server.URL, "test-key", 5*time.Second, nil)

	resp, err := client.chat(context.Background(), ChatRequest{
		Model:    "qwen3-max",
		Messages: []Message{{Role: RoleUser, Content: "price of 600519?"}},
		Tools: []ToolDefinition{{
			Type: "function",
			Function: FunctionDefinition{
				Name:        "get_stock_price",
				Description: "Get the latest stock quote",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"symbol": map[string]any{"type": "string"},
					},
				},
			},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, FinishReasonToolCalls, resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "get_stock_price", resp.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"symbol":"600519"}`, resp.ToolCalls[0].Function.Arguments)
}

func TestCompatClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := newCompatClient(server.URL, "test-key", 5*time.Second, nil)

	_, err := client.chat(context.Background(), ChatRequest{
		Model:    "qwen3-max",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRateLimitExceeded))
}

func TestCompatClient_MissingKey(t *testing.T) {
	client := newCompatClient("http://localhost", "", 5*time.Second, nil)

	_, err := client.chat(context.Background(), ChatRequest{Model: "qwen3-max"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}
