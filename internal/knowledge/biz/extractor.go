package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/knowcast-backend/internal/knowledge/provider"
	"github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/result"
)

// Cache stores successful extractions keyed by query
type Cache interface {
	Get(ctx context.Context, query string) (*types.ExtractionResult, bool, error)
	Set(ctx context.Context, query string, res *types.ExtractionResult) error
}

// Extractor turns a learning query into an ExtractionResult through one provider call
type Extractor struct {
	provider provider.Provider
	cache    Cache
	logger   *logger.Logger
}

// NewExtractor creates an extractor. cache may be nil.
func NewExtractor(p provider.Provider, cache Cache, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.L()
	}
	return &Extractor{
		provider: p,
		cache:    cache,
		logger:   log.Named("knowledge"),
	}
}

// Ready reports whether a provider is configured
func (e *Extractor) Ready() bool {
	return e != nil && e.provider != nil
}

// Extract never returns an error: every failure is reported through the result status.
func (e *Extractor) Extract(ctx context.Context, query string) *types.ExtractionResult {
	res := &types.ExtractionResult{Query: query, Sources: []types.Source{}}

	if strings.TrimSpace(query) == "" {
		res.Status = result.Failed(apperrors.NewValidationError("query", "must not be empty"))
		return res
	}

	log := e.logger.WithContext(ctx).With(zap.String("query", query))

	if cached := e.fromCache(ctx, query, log); cached != nil {
		return cached
	}

	start := time.Now()
	answer, err := e.provider.Answer(ctx, query)
	if err != nil {
		log.Warn("knowledge extraction failed", zap.Error(err))
		res.Status = result.Failed(classify(err))
		return res
	}

	switch {
	case answer.Success:
		res.Status = result.Succeeded()
		res.Answer = answer.Contents
		if answer.Sources != nil {
			res.Sources = answer.Sources
		}
		log.Info("knowledge extracted",
			zap.Int("sources", len(res.Sources)),
			zap.Int("answer_len", len(res.Answer)),
			zap.Duration("took", time.Since(start)),
		)
		e.toCache(ctx, query, res, log)
	case answer.Error != "":
		res.Status = result.Failed(apperrors.New(apperrors.ErrUpstreamService, "API Error: "+answer.Error))
		log.Warn("provider reported an error", zap.String("error", answer.Error))
	default:
		res.Status = result.Failed(apperrors.New(apperrors.ErrUpstreamService,
			fmt.Sprintf("No content received from %s", e.provider.GetName())))
		log.Warn("provider returned no content")
	}

	return res
}

// SearchWithDetails returns ranked sources with their full text instead of a
// synthesized answer. Like Extract it reports failures through the result status.
func (e *Extractor) SearchWithDetails(ctx context.Context, req types.SearchRequest) *types.SearchResult {
	res := &types.SearchResult{Query: req.Query, Results: []types.SearchHit{}}

	if req.MaxResults <= 0 {
		req.MaxResults = types.DefaultSearchMaxResults
	}
	switch {
	case strings.TrimSpace(req.Query) == "":
		res.Status = result.Failed(apperrors.NewValidationError("query", "must not be empty"))
		return res
	case req.RelevanceThreshold < 0 || req.RelevanceThreshold > 1:
		res.Status = result.Failed(apperrors.NewValidationError("relevance_threshold", "must be between 0 and 1"))
		return res
	}

	log := e.logger.WithContext(ctx).With(zap.String("query", req.Query))

	resp, err := e.provider.Search(ctx, req)
	if err != nil {
		log.Warn("detailed search failed", zap.Error(err))
		res.Status = result.Failed(classify(err))
		return res
	}

	switch {
	case resp.Success:
		res.Status = result.Succeeded()
		res.TxID = resp.TxID
		if resp.Hits != nil {
			res.Results = resp.Hits
		}
		log.Info("detailed search finished", zap.Int("results", len(res.Results)))
	case resp.Error != "":
		res.Status = result.Failed(apperrors.New(apperrors.ErrUpstreamService, "API Error: "+resp.Error))
		log.Warn("provider reported an error", zap.String("error", resp.Error))
	default:
		res.Status = result.Failed(apperrors.New(apperrors.ErrUpstreamService, "Search failed"))
		log.Warn("provider search unsuccessful")
	}
	return res
}

// classify maps a provider error onto the upstream error codes, keeping its text as details
func classify(err error) error {
	var perr *types.ParseError
	if errors.As(err, &perr) {
		return apperrors.Wrap(err, apperrors.ErrUpstreamResponse, err.Error())
	}
	return apperrors.Wrap(err, apperrors.ErrUpstreamTransport, err.Error())
}

func (e *Extractor) fromCache(ctx context.Context, query string, log *logger.Logger) *types.ExtractionResult {
	if e.cache == nil {
		return nil
	}
	cached, ok, err := e.cache.Get(ctx, query)
	if err != nil {
		log.Warn("extraction cache read failed", zap.Error(err))
		return nil
	}
	if !ok || !cached.OK() {
		return nil
	}
	log.Debug("extraction served from cache")
	return cached
}

func (e *Extractor) toCache(ctx context.Context, query string, res *types.ExtractionResult, log *logger.Logger) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, query, res); err != nil {
		log.Warn("extraction cache write failed", zap.Error(err))
	}
}
