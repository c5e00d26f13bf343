package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"rentacheck/internal/config"
	"rentacheck/internal/model/openai"
	"rentacheck/internal/port"
)

func testModelConfig() *config.ModelConfig {
	return &config.ModelConfig{
		APIKey:         "test-key",
		ChatModel:      "gpt-4o",
		EmbeddingModel: "text-embedding-3-small",
		TimeoutSecs:    5,
	}
}

func TestChat_EncodesToolsAndResponseFormat(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))

		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "{\"ok\": true}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 15, "total_tokens": 135}
		}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoints(testModelConfig(), srv.URL, srv.URL)
	resp, err := c.Chat(context.Background(), port.ChatRequest{
		Model: "gpt-4o",
		Messages: []port.ChatMessage{
			{Role: port.RoleSystem, Content: "instrucción"},
			{Role: port.RoleUser, Parts: []port.ContentPart{
				{Type: "text", Text: "hola"},
				{Type: "image_url", ImageURL: "https://signed/predial.jpg"},
			}},
		},
		Tools: []port.ToolDef{{
			Name:        "rag_search",
			Description: "búsqueda",
			Parameters:  json.RawMessage(`{"type": "object"}`),
		}},
		ResponseFormat: "json_object",
	})

	assert.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, resp.Message.Content)
	assert.Equal(t, 135, resp.Usage.TotalTokens)

	assert.Equal(t, "gpt-4o", captured["model"])
	assert.Equal(t, "auto", captured["tool_choice"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, captured["response_format"])

	tools := captured["tools"].([]interface{})
	fn := tools[0].(map[string]interface{})["function"].(map[string]interface{})
	assert.Equal(t, "rag_search", fn["name"])

	messages := captured["messages"].([]interface{})
	user := messages[1].(map[string]interface{})
	parts := user["content"].([]interface{})
	assert.Len(t, parts, 2)
	img := parts[1].(map[string]interface{})
	assert.Equal(t, "image_url", img["type"])
}

func TestChat_DecodesToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{"id": "call_1", "type": "function", "function": {"name": "rag_search", "arguments": "{\"query\": \"tope\"}"}}]
			}, "finish_reason": "tool_calls"}],
			"usage": {"prompt_tokens": 80, "completion_tokens": 10, "total_tokens": 90}
		}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoints(testModelConfig(), srv.URL, srv.URL)
	resp, err := c.Chat(context.Background(), port.ChatRequest{Model: "gpt-4o"})

	assert.NoError(t, err)
	assert.Len(t, resp.Message.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.Message.ToolCalls[0].ID)
	assert.Equal(t, "rag_search", resp.Message.ToolCalls[0].Name)
	assert.Equal(t, `{"query": "tope"}`, resp.Message.ToolCalls[0].Arguments)
}

func TestChat_RoundTripsToolResults(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{}"}}]}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoints(testModelConfig(), srv.URL, srv.URL)
	_, err := c.Chat(context.Background(), port.ChatRequest{
		Model: "gpt-4o",
		Messages: []port.ChatMessage{
			{Role: port.RoleAssistant, ToolCalls: []port.ToolCall{{ID: "call_1", Name: "rag_search", Arguments: "{}"}}},
			{Role: port.RoleTool, ToolCallID: "call_1", Content: `{"matches": []}`},
		},
	})
	assert.NoError(t, err)

	messages := captured["messages"].([]interface{})
	asst := messages[0].(map[string]interface{})
	calls := asst["tool_calls"].([]interface{})
	assert.Len(t, calls, 1)

	tool := messages[1].(map[string]interface{})
	assert.Equal(t, "tool", tool["role"])
	assert.Equal(t, "call_1", tool["tool_call_id"])
	assert.Equal(t, `{"matches": []}`, tool["content"])
}

func TestChat_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoints(testModelConfig(), srv.URL, srv.URL)
	_, err := c.Chat(context.Background(), port.ChatRequest{Model: "gpt-4o"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestChat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoints(testModelConfig(), srv.URL, srv.URL)
	_, err := c.Chat(context.Background(), port.ChatRequest{Model: "gpt-4o"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestEmbed_ReturnsVector(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3]}]}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoints(testModelConfig(), srv.URL, srv.URL)
	vec, err := c.Embed(context.Background(), "tope consignaciones")

	assert.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "text-embedding-3-small", captured["model"])
	assert.Equal(t, "tope consignaciones", captured["input"])
}

func TestEmbed_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoints(testModelConfig(), srv.URL, srv.URL)
	_, err := c.Embed(context.Background(), "x")
	assert.Error(t, err)
}
