package engine

import (
	"context"
	"encoding/json"
	"log"

	"rentacheck/internal/domain"
	"rentacheck/internal/port"
)

// Retriever is the single callable capability offered to the model.
type Retriever interface {
	Search(ctx context.Context, query string, topK int, threshold float64) []domain.RagMatch
}

// The tool surface is a closed set: adding a tool means adding a
// constant and a dispatch arm here, not registering a string at runtime.
const toolRagSearch = "rag_search"

var ragSearchSchema = json.RawMessage(`{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"query": {"type": "string"},
		"top_k": {"type": "integer", "minimum": 1, "maximum": 20},
		"threshold": {"type": "number", "minimum": 0, "maximum": 1}
	},
	"required": ["query"]
}`)

func toolDefs() []port.ToolDef {
	return []port.ToolDef{
		{
			Name:        toolRagSearch,
			Description: "Busca pasajes normativos relevantes usando búsqueda semántica sobre el índice normativo.",
			Parameters:  ragSearchSchema,
		},
	}
}

type ragSearchArgs struct {
	Query     string  `json:"query"`
	TopK      int     `json:"top_k"`
	Threshold float64 `json:"threshold"`
}

// dispatchTool executes one tool call and returns the JSON payload to
// append as the tool result. Unknown tool names get a synthetic error
// payload so the conversation stays well-formed instead of silently
// dropping the call.
func dispatchTool(ctx context.Context, retriever Retriever, call port.ToolCall) string {
	switch call.Name {
	case toolRagSearch:
		var args ragSearchArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil || args.Query == "" {
			return `{"error": "rag_search requires a query string"}`
		}
		matches := retriever.Search(ctx, args.Query, args.TopK, args.Threshold)
		if matches == nil {
			matches = []domain.RagMatch{}
		}
		payload, err := json.Marshal(map[string]interface{}{"matches": matches})
		if err != nil {
			return `{"matches": []}`
		}
		return string(payload)
	default:
		log.Printf("engine.dispatchTool: unknown tool %q requested", call.Name)
		payload, _ := json.Marshal(map[string]string{"error": "unknown tool: " + call.Name})
		return string(payload)
	}
}
