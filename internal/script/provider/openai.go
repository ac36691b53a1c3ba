package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/script/types"
)

// OpenAIChat is a JSON mode chat completion client built on go-openai
type OpenAIChat struct {
	client *openai.Client
	model  string
	logger *logger.Logger
}

// NewOpenAIChat creates an OpenAI client
func NewOpenAIChat(cfg *types.ChatConfig, lgr *logger.Logger) (*OpenAIChat, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := lgr
	if log == nil {
		log = logger.L()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	log.Info("openai chat client created", zap.String("model", cfg.Model))

	return &OpenAIChat{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: log,
	}, nil
}

// Model returns the model name
func (c *OpenAIChat) Model() string {
	return c.model
}

// CompleteJSON sends a system and user prompt and asks for a JSON object back
func (c *OpenAIChat) CompleteJSON(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.New(apperrors.ErrUpstreamResponse, "no completion choices returned")
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &types.ChatResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   model,
	}, nil
}

// classify maps go-openai errors onto the upstream error codes
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Wrap(err, apperrors.ErrUpstreamService, apiErr.Message)
	}
	return apperrors.Wrap(err, apperrors.ErrUpstreamTransport, err.Error())
}
