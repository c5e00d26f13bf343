package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"rentacheck/internal/config"
	"rentacheck/internal/port"
)

const (
	chatURL       = "https://api.openai.com/v1/chat/completions"
	embeddingsURL = "https://api.openai.com/v1/embeddings"
)

// Client implements port.ChatModel and port.Embedder against the
// OpenAI Chat Completions and Embeddings APIs.
type Client struct {
	apiKey         string
	embeddingModel string
	chatEndpoint   string
	embedEndpoint  string
	client         *http.Client
}

// NewClient creates an OpenAI client from the model config.
func NewClient(cfg *config.ModelConfig) *Client {
	return newClient(cfg, chatURL, embeddingsURL)
}

// NewClientWithEndpoints creates a client pointing at custom API
// endpoints (for testing).
func NewClientWithEndpoints(cfg *config.ModelConfig, chatEndpoint, embedEndpoint string) *Client {
	return newClient(cfg, chatEndpoint, embedEndpoint)
}

func newClient(cfg *config.ModelConfig, chatEndpoint, embedEndpoint string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}
	return &Client{
		apiKey:         cfg.APIKey,
		embeddingModel: embeddingModel,
		chatEndpoint:   chatEndpoint,
		embedEndpoint:  embedEndpoint,
		client:         &http.Client{Timeout: timeout},
	}
}

// wire types for the Chat Completions API

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    interface{}    `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatAPIResponse struct {
	Choices []struct {
		Message struct {
			Role      string         `json:"role"`
			Content   string         `json:"content"`
			ToolCalls []wireToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage port.Usage `json:"usage"`
}

// Chat performs one Chat Completions call with optional tools and a
// structured-JSON response mode.
func (c *Client) Chat(ctx context.Context, req port.ChatRequest) (*port.ChatResponse, error) {
	body := map[string]interface{}{
		"model":    req.Model,
		"messages": encodeMessages(req.Messages),
	}
	if len(req.Tools) > 0 {
		body["tools"] = encodeTools(req.Tools)
		body["tool_choice"] = "auto"
	}
	if req.ResponseFormat != "" {
		body["response_format"] = map[string]string{"type": req.ResponseFormat}
	}

	respBody, err := c.post(ctx, c.chatEndpoint, body)
	if err != nil {
		return nil, err
	}

	var resp chatAPIResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	msg := resp.Choices[0].Message
	out := port.ChatMessage{Role: msg.Role, Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, port.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return &port.ChatResponse{Message: out, Usage: resp.Usage}, nil
}

// Embed returns the embedding vector for a single input text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body := map[string]interface{}{
		"model": c.embeddingModel,
		"input": text,
	}
	respBody, err := c.post(ctx, c.embedEndpoint, body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling embeddings response: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty response from embeddings API")
	}
	return resp.Data[0].Embedding, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
	}
	return respBody, nil
}

func encodeMessages(msgs []port.ChatMessage) []wireMessage {
	out := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		wm := wireMessage{Role: m.Role, ToolCallID: m.ToolCallID}
		switch {
		case len(m.Parts) > 0:
			var parts []map[string]interface{}
			for _, p := range m.Parts {
				switch p.Type {
				case "image_url":
					parts = append(parts, map[string]interface{}{
						"type":      "image_url",
						"image_url": map[string]string{"url": p.ImageURL},
					})
				default:
					parts = append(parts, map[string]interface{}{
						"type": "text",
						"text": p.Text,
					})
				}
			}
			wm.Content = parts
		case m.Content != "" || len(m.ToolCalls) == 0:
			wm.Content = m.Content
		}
		for _, tc := range m.ToolCalls {
			wtc := wireToolCall{ID: tc.ID, Type: "function"}
			wtc.Function.Name = tc.Name
			wtc.Function.Arguments = tc.Arguments
			wm.ToolCalls = append(wm.ToolCalls, wtc)
		}
		out = append(out, wm)
	}
	return out
}

func encodeTools(tools []port.ToolDef) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(tools))
	for _, t := range tools {
		out = append(out, map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  json.RawMessage(t.Parameters),
			},
		})
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}
