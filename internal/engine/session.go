package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"unicode/utf8"

	"rentacheck/internal/domain"
	"rentacheck/internal/port"
)

// session is one bounded conversation with the model. The message log
// is append-only and owned by a single attempt: the correction round
// extends it, nothing ever rewrites it.
type session struct {
	chat          port.ChatModel
	retriever     Retriever
	model         string
	maxTurns      int
	correlationID string

	log []port.ChatMessage
}

func newSession(chat port.ChatModel, retriever Retriever, model string, maxTurns int, correlationID string, initial []port.ChatMessage) *session {
	if maxTurns <= 0 {
		maxTurns = 3
	}
	return &session{
		chat:          chat,
		retriever:     retriever,
		model:         model,
		maxTurns:      maxTurns,
		correlationID: correlationID,
		log:           append([]port.ChatMessage(nil), initial...),
	}
}

// append adds a message to the conversation, e.g. a corrective
// instruction before a follow-up run.
func (s *session) append(msg port.ChatMessage) {
	s.log = append(s.log, msg)
}

// run drives the tool loop until the model produces final text or the
// round-trip bound is exhausted. The final text is parsed as JSON; an
// exhausted bound or a non-JSON reply surfaces as ErrInvalidModelJSON,
// which the retry controller treats as an attempt failure.
func (s *session) run(ctx context.Context) (json.RawMessage, error) {
	for turn := 0; turn < s.maxTurns; turn++ {
		resp, err := s.chat.Chat(ctx, port.ChatRequest{
			Model:          s.model,
			Messages:       s.log,
			Tools:          toolDefs(),
			ResponseFormat: "json_object",
		})
		if err != nil {
			return nil, fmt.Errorf("model call: %w", err)
		}

		log.Printf("[%s] session: turn=%d prompt_tokens=%d completion_tokens=%d total_tokens=%d",
			s.correlationID, turn+1, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)

		s.log = append(s.log, resp.Message)

		if len(resp.Message.ToolCalls) > 0 {
			// Execute the batch in the order received; every call gets
			// its result appended before the next model turn.
			for _, call := range resp.Message.ToolCalls {
				payload := dispatchTool(ctx, s.retriever, call)
				s.log = append(s.log, port.ChatMessage{
					Role:       port.RoleTool,
					ToolCallID: call.ID,
					Content:    payload,
				})
			}
			continue
		}

		text := resp.Message.Content
		if text == "" {
			return nil, domain.ErrEmptyModelOutput
		}
		if !json.Valid([]byte(text)) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidModelJSON, head(text, 200))
		}
		return json.RawMessage(text), nil
	}

	log.Printf("[%s] session: round-trip bound (%d) exhausted while model kept requesting tools",
		s.correlationID, s.maxTurns)
	return nil, fmt.Errorf("%w: round-trip bound exhausted", domain.ErrInvalidModelJSON)
}

// head returns at most n bytes of s, cut at a rune boundary so error
// text never carries a broken UTF-8 sequence.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
