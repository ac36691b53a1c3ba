package biz

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	knowledgetypes "github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/result"
	"github.com/lk2023060901/knowcast-backend/internal/podcast/types"
	scripttypes "github.com/lk2023060901/knowcast-backend/internal/script/types"
)

// Default request values applied when a pipeline request leaves them out
const (
	DefaultStyle       = scripttypes.StyleEducational
	DefaultLength      = scripttypes.LengthMedium
	DefaultNumSpeakers = 2
)

// KnowledgeStage turns a query into extracted knowledge
type KnowledgeStage interface {
	Extract(ctx context.Context, query string) *knowledgetypes.ExtractionResult
}

// OutputLocator maps a query to the local path of its audio file
type OutputLocator interface {
	OutputPath(query string) string
}

// Archiver copies a finished audio file to long term storage and returns a download URL
type Archiver interface {
	Archive(ctx context.Context, localPath string) (string, error)
}

// Pipeline runs extract, script and audio for one learning query
type Pipeline struct {
	knowledge KnowledgeStage
	podcast   *Generator
	output    OutputLocator
	archiver  Archiver
	logger    *logger.Logger
}

// NewPipeline creates a pipeline. archiver may be nil.
func NewPipeline(knowledge KnowledgeStage, podcast *Generator, output OutputLocator, archiver Archiver, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.L()
	}
	return &Pipeline{
		knowledge: knowledge,
		podcast:   podcast,
		output:    output,
		archiver:  archiver,
		logger:    log.Named("pipeline"),
	}
}

// Ready reports whether every stage is configured
func (p *Pipeline) Ready() bool {
	return p != nil && p.knowledge != nil && p.podcast.Ready() && p.output != nil
}

// Run executes the whole pipeline; failures are reported through the result status
func (p *Pipeline) Run(ctx context.Context, req types.PipelineRequest) *types.PodcastResult {
	query := strings.TrimSpace(req.Query)
	applyDefaults(&req)
	if err := validate(query, req); err != nil {
		return &types.PodcastResult{
			Status: result.Failed(err),
			Stage:  types.StageExtract,
			Script: []scripttypes.DialogueTurn{},
		}
	}

	log := p.logger.WithContext(ctx).With(zap.String("query", query))

	knowledge := p.knowledge.Extract(logger.WithStage(ctx, string(types.StageExtract)), query)
	if !knowledge.OK() {
		log.Warn("extract stage failed", zap.String("error", knowledge.Error))
		return &types.PodcastResult{
			Status: result.FailedStage(knowledge.Err(), apperrors.ErrKnowledgeExtraction),
			Stage:  types.StageExtract,
			Script: []scripttypes.DialogueTurn{},
		}
	}

	res := p.podcast.Generate(ctx, types.PodcastRequest{
		GenerateScriptRequest: scripttypes.GenerateScriptRequest{
			Knowledge:       knowledge.Answer,
			Topic:           query,
			NumSpeakers:     req.NumSpeakers,
			Style:           req.Style,
			Length:          req.Length,
			VoiceIDs:        req.VoiceIDs,
			Characteristics: req.Characteristics,
		},
		OutputPath: p.output.OutputPath(query),
	})
	if !res.OK() {
		return res
	}

	res.Metadata.SourceCount = len(knowledge.Sources)
	p.archive(ctx, res, log)
	return res
}

// archive is best effort; a failure only costs the archive URL
func (p *Pipeline) archive(ctx context.Context, res *types.PodcastResult, log *logger.Logger) {
	if p.archiver == nil {
		return
	}
	url, err := p.archiver.Archive(ctx, res.AudioPath)
	if err != nil {
		log.Warn("podcast archive failed", zap.String("path", res.AudioPath), zap.Error(err))
		return
	}
	res.Metadata.ArchiveURL = url
}

func applyDefaults(req *types.PipelineRequest) {
	if req.Style == "" {
		req.Style = DefaultStyle
	}
	if req.Length == "" {
		req.Length = DefaultLength
	}
	if req.NumSpeakers == 0 {
		req.NumSpeakers = DefaultNumSpeakers
	}
}

// validate rejects a request before any upstream call is paid for
func validate(query string, req types.PipelineRequest) error {
	switch {
	case query == "":
		return apperrors.NewValidationError("query", "must not be empty")
	case !req.Style.Valid():
		return apperrors.NewValidationError("style", fmt.Sprintf("unknown style %q", req.Style))
	case !req.Length.Valid():
		return apperrors.NewValidationError("length", fmt.Sprintf("unknown length %q", req.Length))
	case req.NumSpeakers < 1:
		return apperrors.NewValidationError("num_speakers", "must be at least 1")
	}
	return nil
}
