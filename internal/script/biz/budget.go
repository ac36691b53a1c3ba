package biz

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

type tokenizer interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// KnowledgeBudget trims knowledge text to a token count before prompting. A nil
// budget keeps text unchanged.
type KnowledgeBudget struct {
	encoding  tokenizer
	maxTokens int
}

// NewKnowledgeBudget loads the encoding; maxTokens <= 0 disables trimming and returns nil
func NewKnowledgeBudget(maxTokens int, encoding string) (*KnowledgeBudget, error) {
	if maxTokens <= 0 {
		return nil, nil
	}
	if encoding == "" {
		encoding = defaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding: %w", err)
	}
	return &KnowledgeBudget{encoding: enc, maxTokens: maxTokens}, nil
}

// MaxTokens returns the budget, 0 when disabled
func (b *KnowledgeBudget) MaxTokens() int {
	if b == nil {
		return 0
	}
	return b.maxTokens
}

// Trim returns text cut to the budget and whether it was cut
func (b *KnowledgeBudget) Trim(text string) (string, bool) {
	if b == nil || text == "" {
		return text, false
	}

	tokens := b.encoding.Encode(text, nil, nil)
	if len(tokens) <= b.maxTokens {
		return text, false
	}
	return b.encoding.Decode(tokens[:b.maxTokens]), true
}
