package service

import (
	"context"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/mode"
	"github.com/google/uuid"
)

// ContextAssembler builds the ordered message context handed to a completion
// provider: one system prompt for the session's mode followed by the most
// recent history window in chronological order.
type ContextAssembler struct {
	messageRepo domain.MessageRepository
	window      int
}

// NewContextAssembler creates a context assembler with the given history window.
func NewContextAssembler(messageRepo domain.MessageRepository, window int) *ContextAssembler {
	return &ContextAssembler{
		messageRepo: messageRepo,
		window:      window,
	}
}

// Build assembles the provider context for a session. The system prompt is
// always the first entry regardless of how much history exists.
func (a *ContextAssembler) Build(ctx context.Context, sessionID uuid.UUID, m domain.Mode) ([]llm.Message, error) {
	history, err := a.messageRepo.ListBySession(ctx, sessionID, a.window)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to load session history", err)
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: mode.SystemPrompt(m),
	})
	for _, msg := range history {
		role := llm.RoleUser
		if msg.Role == domain.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: msg.Content,
		})
	}

	return messages, nil
}
