package biz

import (
	"context"
	"time"

	"go.uber.org/zap"

	audiotypes "github.com/lk2023060901/knowcast-backend/internal/audio/types"
	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/result"
	"github.com/lk2023060901/knowcast-backend/internal/podcast/types"
	scriptbiz "github.com/lk2023060901/knowcast-backend/internal/script/biz"
	scripttypes "github.com/lk2023060901/knowcast-backend/internal/script/types"
)

// ScriptStage produces a dialogue script
type ScriptStage interface {
	Generate(ctx context.Context, req scripttypes.GenerateScriptRequest) *scripttypes.ScriptResult
}

// AudioStage renders synthesis turns to a file
type AudioStage interface {
	Synthesize(ctx context.Context, turns []scripttypes.SynthesisTurn, outputPath string) *audiotypes.AudioResult
}

// Generator runs the script stage then the audio stage, stopping at the first failure
type Generator struct {
	script ScriptStage
	audio  AudioStage
	logger *logger.Logger
}

// NewGenerator creates a podcast generator
func NewGenerator(script ScriptStage, audio AudioStage, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.L()
	}
	return &Generator{
		script: script,
		audio:  audio,
		logger: log.Named("podcast"),
	}
}

// Ready reports whether both stages are configured
func (g *Generator) Ready() bool {
	return g != nil && g.script != nil && g.audio != nil
}

// Generate never retries a stage and never reuses a script across attempts
func (g *Generator) Generate(ctx context.Context, req types.PodcastRequest) *types.PodcastResult {
	log := g.logger.WithContext(ctx).With(zap.String("topic", req.Topic), zap.String("path", req.OutputPath))
	start := time.Now()

	scriptRes := g.script.Generate(logger.WithStage(ctx, string(types.StageScript)), req.GenerateScriptRequest)
	if !scriptRes.OK() {
		log.Warn("script stage failed", zap.String("error", scriptRes.Error))
		return &types.PodcastResult{
			Status: result.FailedStage(scriptRes.Err(), apperrors.ErrScriptGeneration),
			Stage:  types.StageScript,
			Script: []scripttypes.DialogueTurn{},
		}
	}

	turns := scriptbiz.FormatForSynthesis(scriptRes.Script, scriptRes.Metadata.SpeakerConfig)

	audioRes := g.audio.Synthesize(logger.WithStage(ctx, string(types.StageAudio)), turns, req.OutputPath)
	if !audioRes.OK() {
		log.Warn("audio stage failed", zap.String("error", audioRes.Error))
		return &types.PodcastResult{
			Status: result.FailedStage(audioRes.Err(), apperrors.ErrAudioGeneration),
			Stage:  types.StageAudio,
			Script: []scripttypes.DialogueTurn{},
		}
	}

	log.Info("podcast generated",
		zap.Int("turns", len(scriptRes.Script)),
		zap.Int64("size", audioRes.FileSize),
		zap.Duration("took", time.Since(start)),
	)

	return &types.PodcastResult{
		Status:    result.Succeeded(),
		Stage:     types.StageDone,
		AudioPath: audioRes.AudioPath,
		Script:    scriptRes.Script,
		Metadata: &types.PodcastMetadata{
			ScriptMetadata:    scriptRes.Metadata,
			FileSize:          audioRes.FileSize,
			EstimatedDuration: audioRes.EstimatedDuration,
		},
	}
}
