package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/result"
	"github.com/lk2023060901/knowcast-backend/internal/script/types"
)

// DefaultTemperature keeps generated dialogue varied
const DefaultTemperature float32 = 0.8

// ChatCompleter requests a JSON object completion
type ChatCompleter interface {
	CompleteJSON(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error)
}

// Generator turns knowledge into a multi-speaker dialogue script
type Generator struct {
	chat        ChatCompleter
	budget      *KnowledgeBudget
	temperature float32
	logger      *logger.Logger
}

// NewGenerator creates a generator. budget may be nil.
func NewGenerator(chat ChatCompleter, budget *KnowledgeBudget, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.L()
	}
	return &Generator{
		chat:        chat,
		budget:      budget,
		temperature: DefaultTemperature,
		logger:      log.Named("script"),
	}
}

// Ready reports whether a chat client is configured
func (g *Generator) Ready() bool {
	return g != nil && g.chat != nil
}

type scriptPayload struct {
	Dialogue []types.DialogueTurn `json:"dialogue"`
}

// Generate validates req, assigns speakers and asks the chat service for a script.
// Failures are reported through the result status.
func (g *Generator) Generate(ctx context.Context, req types.GenerateScriptRequest) *types.ScriptResult {
	res := &types.ScriptResult{Script: []types.DialogueTurn{}}

	if err := validate(&req); err != nil {
		res.Status = result.Failed(err)
		return res
	}

	speakers := AssignSpeakers(req.NumSpeakers, req.Style, req.VoiceIDs, req.Characteristics)
	res.Metadata = types.ScriptMetadata{
		Topic:         req.Topic,
		NumSpeakers:   len(speakers),
		Style:         req.Style,
		Length:        req.Length,
		SpeakerConfig: speakers,
	}

	log := g.logger.WithContext(ctx).With(
		zap.String("topic", req.Topic),
		zap.String("style", string(req.Style)),
		zap.String("length", string(req.Length)),
		zap.Int("speakers", len(speakers)),
	)

	knowledge, trimmed := g.budget.Trim(req.Knowledge)
	if trimmed {
		log.Info("knowledge trimmed to token budget", zap.Int("max_tokens", g.budget.MaxTokens()))
	}

	start := time.Now()
	resp, err := g.chat.CompleteJSON(ctx, types.ChatRequest{
		System:      SystemPrompt(speakers, req.Style, req.Length),
		User:        UserPrompt(req.Topic, knowledge, req.Length),
		Temperature: g.temperature,
	})
	if err != nil {
		log.Warn("chat completion failed", zap.Error(err))
		res.Status = result.Failed(apperrors.Wrap(err, apperrors.ErrUpstreamTransport, apperrors.GetDetails(err)))
		return res
	}
	res.Metadata.Model = resp.Model

	script, err := ParseScript(resp.Content)
	if err != nil {
		log.Warn("script parse failed", zap.Error(err))
		res.Status = result.Failed(err)
		return res
	}

	res.Status = result.Succeeded()
	res.Script = script
	res.Metadata.TurnCount = len(script)
	log.Info("script generated",
		zap.Int("turns", len(script)),
		zap.String("model", resp.Model),
		zap.Duration("took", time.Since(start)),
	)
	return res
}

// ParseScript decodes the dialogue array of a completion
func ParseScript(content string) ([]types.DialogueTurn, error) {
	var payload scriptPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, apperrors.New(apperrors.ErrUpstreamResponse, fmt.Sprintf("failed to parse script JSON: %v", err))
	}
	if len(payload.Dialogue) == 0 {
		return nil, apperrors.New(apperrors.ErrUpstreamResponse, "no dialogue turns returned")
	}
	return payload.Dialogue, nil
}

func validate(req *types.GenerateScriptRequest) error {
	if req.Style == "" {
		req.Style = types.StyleEducational
	}
	if req.Length == "" {
		req.Length = types.LengthMedium
	}

	switch {
	case strings.TrimSpace(req.Topic) == "":
		return apperrors.NewValidationError("topic", "must not be empty")
	case strings.TrimSpace(req.Knowledge) == "":
		return apperrors.NewValidationError("knowledge", "must not be empty")
	case req.NumSpeakers < 1:
		return apperrors.NewValidationError("num_speakers", "must be at least 1")
	case !req.Style.Valid():
		return apperrors.NewValidationError("style", fmt.Sprintf("unknown style %q", req.Style))
	case !req.Length.Valid():
		return apperrors.NewValidationError("length", fmt.Sprintf("unknown length %q", req.Length))
	}
	return nil
}
