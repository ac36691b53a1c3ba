package service

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/knowcast-backend/internal/knowledge/biz"
	"github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/response"
)

// KnowledgeService serves knowledge extraction over HTTP
type KnowledgeService struct {
	extractor *biz.Extractor
	logger    *logger.Logger
}

// NewKnowledgeService creates a knowledge service
func NewKnowledgeService(extractor *biz.Extractor, log *logger.Logger) *KnowledgeService {
	return &KnowledgeService{
		extractor: extractor,
		logger:    log,
	}
}

// ExtractRequest body of POST /extract
type ExtractRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchRequest body of POST /search
type SearchRequest struct {
	Query              string   `json:"query" binding:"required"`
	MaxResults         int      `json:"max_results" binding:"omitempty,min=1,max=100"`
	RelevanceThreshold *float64 `json:"relevance_threshold" binding:"omitempty,min=0,max=1"`
}

// FormatPodcastRequest body of POST /format-podcast
type FormatPodcastRequest struct {
	Knowledge *types.ExtractionResult `json:"knowledge" binding:"required"`
}

// RegisterRoutes mounts the knowledge routes
func (s *KnowledgeService) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/extract", s.Extract)
	r.POST("/search", s.Search)
	r.POST("/format-podcast", s.FormatPodcast)
}

// Extract answers a learning query with cited sources
func (s *KnowledgeService) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "query is required")
		return
	}

	res := s.extractor.Extract(c.Request.Context(), req.Query)
	if !res.OK() {
		s.logFailure(c, "extract request failed", res.Err())
		response.HandleErrorWithData(c, res.Err(), res)
		return
	}

	response.Success(c, res)
}

// Search returns ranked sources with their full text and no synthesized answer
func (s *KnowledgeService) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	threshold := types.DefaultSearchRelevance
	if req.RelevanceThreshold != nil {
		threshold = *req.RelevanceThreshold
	}

	res := s.extractor.SearchWithDetails(c.Request.Context(), types.SearchRequest{
		Query:              req.Query,
		MaxResults:         req.MaxResults,
		RelevanceThreshold: threshold,
	})
	if !res.OK() {
		s.logFailure(c, "search request failed", res.Err())
		response.HandleErrorWithData(c, res.Err(), res)
		return
	}

	response.Success(c, res)
}

// FormatPodcast reshapes an extraction into script generator input
func (s *KnowledgeService) FormatPodcast(c *gin.Context) {
	var req FormatPodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "knowledge is required")
		return
	}

	brief := s.extractor.FormatForPodcast(req.Knowledge)
	if !brief.OK() {
		response.HandleErrorWithData(c, brief.Err(), brief)
		return
	}

	response.Success(c, brief)
}

// logFailure logs caller mistakes at warn and everything else at error
func (s *KnowledgeService) logFailure(c *gin.Context, msg string, err error) {
	log := s.logger.WithContext(c.Request.Context())
	if apperrors.IsClientError(apperrors.ExtractCode(err)) {
		log.Warn(msg, zap.Error(err))
		return
	}
	log.Error(msg, zap.Error(err))
}
