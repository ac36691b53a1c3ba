package types

import (
	"errors"
	"time"
)

// DefaultModel is the chat model used when none is configured
const DefaultModel = "gpt-4-turbo-preview"

var ErrMissingAPIKey = errors.New("openai api key is required")

// ChatConfig configures the chat completion client
type ChatConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	// KnowledgeMaxTokens trims knowledge before prompting; 0 disables trimming
	KnowledgeMaxTokens int    `mapstructure:"knowledge_max_tokens"`
	Encoding           string `mapstructure:"encoding"`
}

// Validate checks required fields and fills defaults
func (c *ChatConfig) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.KnowledgeMaxTokens < 0 {
		return errors.New("knowledge_max_tokens cannot be negative")
	}
	return nil
}
