package port

import (
	"context"

	"kbrag/internal/domain"
)

// ChatModel is a remote language model answering a conversation.
type ChatModel interface {
	// Chat sends the system prompt followed by messages and returns the reply text.
	Chat(ctx context.Context, systemPrompt string, messages []domain.Message) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
