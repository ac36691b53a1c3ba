package biz

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/knowcast-backend/internal/audio/types"
	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/result"
	scripttypes "github.com/lk2023060901/knowcast-backend/internal/script/types"
)

// secondsPerMiB is the bitrate assumption behind EstimatedDuration
const secondsPerMiB = 60.0

// Synthesizer streams synthesized audio
type Synthesizer interface {
	StreamDialogue(ctx context.Context, turns []scripttypes.SynthesisTurn) (io.ReadCloser, error)
	StreamSpeech(ctx context.Context, text, voiceID string) (io.ReadCloser, error)
	ListVoices(ctx context.Context) ([]types.Voice, error)
}

// Generator turns synthesis requests into audio files
type Generator struct {
	synth  Synthesizer
	logger *logger.Logger
}

// NewGenerator creates an audio generator
func NewGenerator(synth Synthesizer, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.L()
	}
	return &Generator{
		synth:  synth,
		logger: log.Named("audio"),
	}
}

// Ready reports whether a synthesizer is configured
func (g *Generator) Ready() bool {
	return g != nil && g.synth != nil
}

// Synthesize renders turns with one dialogue call and writes the audio to outputPath.
// The file appears only when the whole stream was received.
func (g *Generator) Synthesize(ctx context.Context, turns []scripttypes.SynthesisTurn, outputPath string) *types.AudioResult {
	switch {
	case len(turns) == 0:
		return failed(apperrors.NewValidationError("turns", "must not be empty"))
	case strings.TrimSpace(outputPath) == "":
		return failed(apperrors.NewValidationError("output_path", "must not be empty"))
	}

	log := g.logger.WithContext(ctx).With(zap.Int("turns", len(turns)), zap.String("path", outputPath))
	start := time.Now()

	res := g.render(outputPath, log, func() (io.ReadCloser, error) {
		return g.synth.StreamDialogue(ctx, turns)
	})
	if res.OK() {
		log.Info("podcast audio generated",
			zap.Int64("size", res.FileSize),
			zap.Float64("estimated_duration", res.EstimatedDuration),
			zap.Duration("took", time.Since(start)),
		)
	}
	return res
}

// GenerateSimpleTTS renders text with a single voice; an empty voiceID uses the default voice
func (g *Generator) GenerateSimpleTTS(ctx context.Context, text, voiceID, outputPath string) *types.AudioResult {
	switch {
	case strings.TrimSpace(text) == "":
		return failed(apperrors.NewValidationError("text", "must not be empty"))
	case strings.TrimSpace(outputPath) == "":
		return failed(apperrors.NewValidationError("output_path", "must not be empty"))
	}
	if voiceID == "" {
		voiceID = types.DefaultSpeechVoice
	}

	log := g.logger.WithContext(ctx).With(zap.String("voice_id", voiceID), zap.String("path", outputPath))
	return g.render(outputPath, log, func() (io.ReadCloser, error) {
		return g.synth.StreamSpeech(ctx, text, voiceID)
	})
}

// ListVoices returns the voice catalog
func (g *Generator) ListVoices(ctx context.Context) *types.VoicesResult {
	voices, err := g.synth.ListVoices(ctx)
	if err != nil {
		g.logger.WithContext(ctx).Warn("list voices failed", zap.Error(err))
		return &types.VoicesResult{
			Status: result.Failed(apperrors.Wrap(err, apperrors.ErrUpstreamTransport, apperrors.GetDetails(err))),
			Voices: []types.Voice{},
		}
	}
	return &types.VoicesResult{Status: result.Succeeded(), Voices: voices}
}

func (g *Generator) render(outputPath string, log *logger.Logger, open func() (io.ReadCloser, error)) *types.AudioResult {
	stream, err := open()
	if err != nil {
		log.Warn("synthesis request failed", zap.Error(err))
		return failed(apperrors.Wrap(err, apperrors.ErrUpstreamTransport, apperrors.GetDetails(err)))
	}
	defer stream.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, stream); err != nil {
		log.Warn("synthesis stream interrupted", zap.Int("received", buf.Len()), zap.Error(err))
		return failed(apperrors.Wrap(err, apperrors.ErrUpstreamTransport, err.Error()))
	}
	if buf.Len() == 0 {
		return failed(apperrors.New(apperrors.ErrUpstreamResponse, "no audio data received"))
	}

	if err := writeFileAtomic(outputPath, buf.Bytes()); err != nil {
		log.Error("write audio file failed", zap.Error(err))
		return failed(apperrors.Wrap(err, apperrors.ErrAudioStorage, err.Error()))
	}

	size := int64(buf.Len())
	return &types.AudioResult{
		Status:            result.Succeeded(),
		AudioPath:         outputPath,
		FileSize:          size,
		EstimatedDuration: EstimateDuration(size),
	}
}

// EstimateDuration approximates seconds of audio from its size (1 MiB is about one minute)
func EstimateDuration(size int64) float64 {
	return float64(size) / (1 << 20) * secondsPerMiB
}

func failed(err error) *types.AudioResult {
	return &types.AudioResult{Status: result.Failed(err)}
}
