package port

import (
	"context"
	"encoding/json"
)

// Message roles on the chat wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ContentPart is one block inside a multi-part user message.
type ContentPart struct {
	Type     string `json:"type"` // "text" or "image_url"
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON argument string
}

// ChatMessage is one turn in a conversation. Parts is used for
// multi-part user content; Content for plain-text turns. ToolCallID is
// set on role=tool messages to link a result back to its call.
type ChatMessage struct {
	Role       string
	Content    string
	Parts      []ContentPart
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolDef describes a callable function offered to the model.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema for the arguments
}

// ChatRequest carries one model call.
type ChatRequest struct {
	Model          string
	Messages       []ChatMessage
	Tools          []ToolDef
	ResponseFormat string // "json_object" or empty
}

// Usage holds token counters reported by the model API.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the model's reply to a single call.
type ChatResponse struct {
	Message ChatMessage
	Usage   Usage
}

// ChatModel abstracts a chat/completion-style generative model with
// function tools and a structured-JSON response mode. Implementations
// must be safe for concurrent independent use.
type ChatModel interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
