package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kbrag/internal/domain"
	"kbrag/internal/logger"
	"kbrag/internal/port"
)

const (
	// ErrorReply is sent when the model call fails.
	ErrorReply = "Sorry, I can't answer your question right now. Please try again later."
	// EmptyReply is sent when the model answers with nothing.
	EmptyReply = "Sorry, I couldn't generate a reply right now. Please try again later."
	// WelcomeMessage opens every new conversation and is part of its history.
	WelcomeMessage = "Hello! I'm your support assistant, ready to answer from the knowledge base. How can I help you?"

	DefaultHistory = 10
)

// ChatUseCase answers questions with knowledge retrieved from the store.
type ChatUseCase struct {
	retrieve *RetrieveUseCase
	prompts  *PromptBuilder
	model    port.ChatModel
	sessions port.SessionStore
	history  int
	now      func() time.Time
}

// NewChatUseCase creates a chat use case. sessions may be nil, in which
// case conversations live only in memory.
func NewChatUseCase(
	retrieve *RetrieveUseCase,
	prompts *PromptBuilder,
	model port.ChatModel,
	sessions port.SessionStore,
	history int,
) *ChatUseCase {
	if history <= 0 {
		history = DefaultHistory
	}
	return &ChatUseCase{
		retrieve: retrieve,
		prompts:  prompts,
		model:    model,
		sessions: sessions,
		history:  history,
		now:      time.Now,
	}
}

// NewSession starts a conversation with a fresh ID and the assistant's
// greeting.
func (u *ChatUseCase) NewSession() *domain.Session {
	now := u.now()
	session := domain.NewSession(uuid.New().String(), now)
	session.Append(domain.Message{Role: domain.RoleAssistant, Content: WelcomeMessage}, now)
	return session
}

// Resume loads a saved conversation.
func (u *ChatUseCase) Resume(id string) (*domain.Session, error) {
	if u.sessions == nil {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return u.sessions.GetSession(id)
}

// Ask records the question in session, retrieves knowledge for it and asks
// the model with the recent history. A failed knowledge lookup falls back
// to the base prompt and model failures become an apology reply.
func (u *ChatUseCase) Ask(ctx context.Context, session *domain.Session, question string) (domain.Reply, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Reply{}, fmt.Errorf("question must not be empty")
	}

	session.Append(domain.Message{Role: domain.RoleUser, Content: question}, u.now())

	passages, err := u.retrieve.Retrieve(question)
	if err != nil {
		logger.Warn("knowledge search failed, answering without it: %v", err)
		passages = nil
	}

	systemPrompt, err := u.prompts.Build(passages)
	if err != nil {
		return domain.Reply{}, err
	}

	recent := session.Recent(u.history)
	logger.Debug("sending %d messages to %s with %d passages", len(recent), u.model.ModelName(), len(passages))

	text, err := u.model.Chat(ctx, systemPrompt, recent)
	switch {
	case err != nil:
		logger.Error("chat model failed: %v", err)
		text = ErrorReply
	case strings.TrimSpace(text) == "":
		logger.Warn("chat model returned an empty reply")
		text = EmptyReply
	}

	session.Append(domain.Message{Role: domain.RoleAssistant, Content: text}, u.now())

	if u.sessions != nil {
		if err := u.sessions.PutSession(session); err != nil {
			return domain.Reply{}, fmt.Errorf("failed to save session: %w", err)
		}
	}

	return domain.Reply{
		Text:          text,
		KnowledgeUsed: len(passages) > 0,
		Sources:       passages,
	}, nil
}
