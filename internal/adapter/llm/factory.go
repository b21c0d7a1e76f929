package llm

import (
	"fmt"

	"kbrag/config"
	"kbrag/internal/port"
)

// New builds the chat model named by cfg.Provider.
func New(cfg config.ChatConfig) (port.ChatModel, error) {
	opts := Options{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	}

	switch cfg.Provider {
	case "zhipu", "":
		if cfg.BaseURL != "" {
			return NewOpenAICompatibleClient(cfg.APIKeyEnv, cfg.Model, cfg.BaseURL, opts)
		}
		return NewZhipuClient(cfg.APIKeyEnv, cfg.Model, opts)
	case "openai":
		if cfg.BaseURL != "" {
			return NewOpenAICompatibleClient(cfg.APIKeyEnv, cfg.Model, cfg.BaseURL, opts)
		}
		return NewOpenAIClient(cfg.APIKeyEnv, cfg.Model, opts)
	case "mock":
		return NewMockChat(), nil
	default:
		return nil, fmt.Errorf("unknown chat provider: %s", cfg.Provider)
	}
}
