package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"minerva/pkg/errors"
)

// openAI-compatible wire types. Shared by all providers exposing the
// /chat/completions endpoint shape.

type openAIRequest struct {
	Model          string               `json:"model"`
	Messages       []openAIMessage      `json:"messages"`
	Temperature    float64              `json:"temperature,omitempty"`
	MaxTokens      int                  `json:"max_tokens,omitempty"`
	Tools          []openAITool         `json:"tools,omitempty"`
	ResponseFormat *openAIRespFormat    `json:"response_format,omitempty"`
}

type openAIRespFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	Name       string           `json:"name,omitempty"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openAIToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openAITool struct {
	Type     string            `json:"type"`
	Function openAIFunctionDef `json:"function"`
}

type openAIFunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   Usage          `json:"usage"`
	Error   *openAIError   `json:"error,omitempty"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// compatClient is an HTTP client for OpenAI-compatible chat APIs,
// parameterized by base URL and API key.
type compatClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    RateLimiter
}

func newCompatClient(baseURL, apiKey string, timeout time.Duration, limiter RateLimiter) *compatClient {
	return &compatClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// chat executes a chat completion round trip against the provider.
func (c *compatClient) chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(errors.ErrUnauthorized, "api key is not configured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(errors.ErrRateLimitExceeded, err.Error())
		}
	}

	wireReq := openAIRequest{
		Model:       req.Model,
		Messages:    toWireMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, t := range req.Tools {
		wireReq.Tools = append(wireReq.Tools, openAITool{
			Type: t.Type,
			Function: openAIFunctionDef{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	if req.ResponseJSON {
		wireReq.ResponseFormat = &openAIRespFormat{Type: "json_object"}
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(errors.ErrExternal, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chat response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "provider returned 429: %s", truncate(respBody, 256))
	}

	var wireResp openAIResponse
	if err := json.Unmarshal(respBody, &wireResp); err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "invalid chat response (status %d): %s", resp.StatusCode, truncate(respBody, 256))
	}
	if wireResp.Error != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "provider error: %s", wireResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrExternal, "unexpected status %d: %s", resp.StatusCode, truncate(respBody, 256))
	}
	if len(wireResp.Choices) == 0 {
		return nil, errors.Wrap(errors.ErrExternal, "chat response contains no choices")
	}

	choice := wireResp.Choices[0]
	out := &ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: FinishReason(choice.FinishReason),
		Usage:        wireResp.Usage,
		Model:        wireResp.Model,
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out, nil
}

func toWireMessages(msgs []Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(msgs))
	for _, m := range msgs {
		wm := openAIMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			wtc := openAIToolCall{ID: tc.ID, Type: tc.Type}
			wtc.Function.Name = tc.Function.Name
			wtc.Function.Arguments = tc.Function.Arguments
			wm.ToolCalls = append(wm.ToolCalls, wtc)
		}
		out = append(out, wm)
	}
	return out
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s...", b[:n])
}
