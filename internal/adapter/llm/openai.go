package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

const (
	ZhipuBaseURL  = "https://open.bigmodel.cn/api/paas/v4"
	OpenAIBaseURL = "https://api.openai.com/v1"
)

var _ port.ChatModel = (*ChatClient)(nil)

// Options tune a chat-completions request.
type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type ChatClient struct {
	apiKey  string
	model   string
	baseURL string
	opts    Options
	client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Index   int         `json:"index"`
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewZhipuClient(apiKeyEnv, model string, opts Options) (*ChatClient, error) {
	return NewOpenAICompatibleClient(apiKeyEnv, model, ZhipuBaseURL, opts)
}

func NewOpenAIClient(apiKeyEnv, model string, opts Options) (*ChatClient, error) {
	return NewOpenAICompatibleClient(apiKeyEnv, model, OpenAIBaseURL, opts)
}

func NewOpenAICompatibleClient(apiKeyEnv, model, baseURL string, opts Options) (*ChatClient, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	return newClient(apiKey, model, baseURL, opts), nil
}

func newClient(apiKey, model, baseURL string, opts Options) *ChatClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &ChatClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

func (c *ChatClient) Chat(ctx context.Context, systemPrompt string, messages []domain.Message) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    make([]chatMessage, 0, len(messages)+1),
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}
	if systemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: string(domain.RoleSystem), Content: systemPrompt})
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, preview(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response (body: %s): %w", preview(body), err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("API returned no choices (body: %s)", preview(body))
	}

	return chatResp.Choices[0].Message.Content, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func (c *ChatClient) ModelName() string {
	return c.model
}

// MockChat answers without a network call. It echoes the last user message
// and reports how many knowledge passages the system prompt carried.
type MockChat struct {
	// Err, when set, is returned from every call.
	Err error
	// LastSystem and LastMessages record the most recent request.
	LastSystem   string
	LastMessages []domain.Message
}

func NewMockChat() *MockChat {
	return &MockChat{}
}

func (m *MockChat) Chat(ctx context.Context, systemPrompt string, messages []domain.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.LastSystem = systemPrompt
	m.LastMessages = append([]domain.Message(nil), messages...)
	if m.Err != nil {
		return "", m.Err
	}

	question := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			question = messages[i].Content
			break
		}
	}
	sources := strings.Count(systemPrompt, "[source: ")
	return fmt.Sprintf("(mock) %d passage(s) for: %s", sources, question), nil
}

func (m *MockChat) ModelName() string {
	return "mock"
}
