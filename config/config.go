package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"kbrag/internal/domain"
)

// Config holds all configuration for the knowledge-base assistant.
type Config struct {
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Chat      ChatConfig      `yaml:"chat"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// KnowledgeConfig holds retrieval configuration.
type KnowledgeConfig struct {
	ChunkSize    int `yaml:"chunk_size"`    // soft bound on chunk length, in characters
	PassageChars int `yaml:"passage_chars"` // passages are cut to this many characters
	TopK         int `yaml:"top_k"`
	MaxNGram     int `yaml:"max_ngram"`
}

// IngestConfig holds document ingestion configuration.
type IngestConfig struct {
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	MaxFileBytes int64    `yaml:"max_file_bytes"`
}

// ChatConfig holds language model configuration.
type ChatConfig struct {
	Provider    string        `yaml:"provider"` // "zhipu", "openai", "mock"
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKeyEnv   string        `yaml:"api_key_env"` // Environment variable for API key
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	History     int           `yaml:"history"` // recent messages sent with each question
	Timeout     time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Knowledge: KnowledgeConfig{
			ChunkSize:    600,
			PassageChars: 800,
			TopK:         3,
			MaxNGram:     4,
		},
		Ingest: IngestConfig{
			Includes:     []string{"**/*.txt", "**/*.md", "**/*.docx", "**/*.pdf", "**/*.doc"},
			Excludes:     []string{"**/.git/**", "**/.kbrag/**", "**/node_modules/**"},
			MaxFileBytes: 50 * 1024 * 1024,
		},
		Chat: ChatConfig{
			Provider:    "zhipu",
			BaseURL:     "https://open.bigmodel.cn/api/paas/v4",
			Model:       "glm-4-flash",
			APIKeyEnv:   "ZHIPU_API_KEY",
			Temperature: 0.7,
			MaxTokens:   2048,
			History:     10,
			Timeout:     60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Validate rejects settings the retrieval engine cannot run with.
func (c *Config) Validate() error {
	if c.Knowledge.ChunkSize <= 0 {
		return fmt.Errorf("%w: knowledge.chunk_size must be positive, got %d", domain.ErrInvalidConfiguration, c.Knowledge.ChunkSize)
	}
	if c.Knowledge.PassageChars <= 0 {
		return fmt.Errorf("%w: knowledge.passage_chars must be positive, got %d", domain.ErrInvalidConfiguration, c.Knowledge.PassageChars)
	}
	if c.Knowledge.TopK <= 0 {
		return fmt.Errorf("%w: knowledge.top_k must be positive, got %d", domain.ErrInvalidConfiguration, c.Knowledge.TopK)
	}
	if c.Chat.History < 0 {
		return fmt.Errorf("%w: chat.history must not be negative, got %d", domain.ErrInvalidConfiguration, c.Chat.History)
	}
	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for kbrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "kbrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".kbrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StorePath returns the path to the document database.
func StorePath(dir string) string {
	return filepath.Join(dir, ".kbrag", "documents.db")
}

// EnsureDataDir ensures the .kbrag directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".kbrag"), 0755)
}
