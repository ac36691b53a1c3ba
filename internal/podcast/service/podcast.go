package service

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	audiobiz "github.com/lk2023060901/knowcast-backend/internal/audio/biz"
	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/response"
	"github.com/lk2023060901/knowcast-backend/internal/podcast/biz"
	"github.com/lk2023060901/knowcast-backend/internal/podcast/data"
	"github.com/lk2023060901/knowcast-backend/internal/podcast/types"
	scriptbiz "github.com/lk2023060901/knowcast-backend/internal/script/biz"
	scripttypes "github.com/lk2023060901/knowcast-backend/internal/script/types"
)

// DownloadPath is the route prefix of generated files
const DownloadPath = "/api/download/"

// PodcastService serves podcast generation over HTTP
type PodcastService struct {
	pipeline *biz.Pipeline
	storage  *data.Storage
	audio    *audiobiz.Generator
	logger   *logger.Logger
}

// NewPodcastService creates a podcast service
func NewPodcastService(pipeline *biz.Pipeline, storage *data.Storage, audio *audiobiz.Generator, log *logger.Logger) *PodcastService {
	return &PodcastService{
		pipeline: pipeline,
		storage:  storage,
		audio:    audio,
		logger:   log,
	}
}

// GeneratePodcastRequest body of POST /generate-podcast
type GeneratePodcastRequest struct {
	Query           string   `json:"query" binding:"required"`
	Style           string   `json:"style" binding:"omitempty,oneof=educational casual debate"`
	Length          string   `json:"length" binding:"omitempty,oneof=short medium detailed"`
	NumSpeakers     int      `json:"num_speakers" binding:"omitempty,min=1"`
	VoiceIDs        []string `json:"voice_ids"`
	Characteristics []string `json:"characteristics"`
}

// OptionsResponse lists the accepted generation options and their defaults
type OptionsResponse struct {
	Styles          []scripttypes.Style  `json:"styles"`
	Lengths         []scripttypes.Length `json:"lengths"`
	Characteristics []string             `json:"characteristics"`
	MaxSpeakers     int                  `json:"max_speakers"`
	Defaults        OptionDefaults       `json:"defaults"`
}

type OptionDefaults struct {
	Style       scripttypes.Style  `json:"style"`
	Length      scripttypes.Length `json:"length"`
	NumSpeakers int                `json:"num_speakers"`
}

// GeneratePodcastResponse data of a successful generation
type GeneratePodcastResponse struct {
	AudioData     string                     `json:"audio_data"`
	AudioFilename string                     `json:"audio_filename"`
	AudioURL      string                     `json:"audio_url"`
	Script        []scripttypes.DialogueTurn `json:"script"`
	Metadata      *types.PodcastMetadata     `json:"metadata"`
}

// RegisterRoutes mounts the podcast routes. generate runs in front of the generation
// handler only, e.g. the rate limiter.
func (s *PodcastService) RegisterRoutes(r *gin.RouterGroup, generate ...gin.HandlerFunc) {
	r.POST("/generate-podcast", append(generate, s.GeneratePodcast)...)
	r.GET("/download/:filename", s.Download)
	r.GET("/voices", s.Voices)
	r.GET("/options", s.Options)
}

// GeneratePodcast runs query to knowledge to script to audio
func (s *PodcastService) GeneratePodcast(c *gin.Context) {
	var req GeneratePodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	res := s.pipeline.Run(ctx, types.PipelineRequest{
		Query:           req.Query,
		Style:           scripttypes.Style(req.Style),
		Length:          scripttypes.Length(req.Length),
		NumSpeakers:     req.NumSpeakers,
		VoiceIDs:        req.VoiceIDs,
		Characteristics: req.Characteristics,
	})
	if !res.OK() {
		s.logFailure(c, "podcast generation failed", res.Err(), zap.String("stage", string(res.Stage)))
		response.HandleErrorWithData(c, res.Err(), res)
		return
	}

	audio, err := s.storage.ReadFile(res.AudioPath)
	if err != nil {
		s.logger.WithContext(ctx).Error("read generated audio failed", zap.Error(err))
		response.HandleError(c, err)
		return
	}

	name := filepath.Base(res.AudioPath)
	response.Success(c, GeneratePodcastResponse{
		AudioData:     base64.StdEncoding.EncodeToString(audio),
		AudioFilename: name,
		AudioURL:      DownloadPath + url.PathEscape(name),
		Script:        res.Script,
		Metadata:      res.Metadata,
	})
}

// Download streams a generated audio file
func (s *PodcastService) Download(c *gin.Context) {
	name := c.Param("filename")

	f, info, err := s.storage.Open(name)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer f.Close()

	c.DataFromReader(http.StatusOK, info.Size(), "audio/mpeg", f, map[string]string{
		"Content-Disposition": data.ContentDisposition(name),
	})
}

// Voices lists the voices of the synthesis account
func (s *PodcastService) Voices(c *gin.Context) {
	res := s.audio.ListVoices(c.Request.Context())
	if !res.OK() {
		s.logFailure(c, "list voices failed", res.Err())
		response.HandleErrorWithData(c, res.Err(), res)
		return
	}
	response.Success(c, res)
}

// Options lists styles, lengths and speaker characteristics a client can pick from.
// Unknown characteristics are still accepted and fall back to the style's speakers.
func (s *PodcastService) Options(c *gin.Context) {
	response.Success(c, OptionsResponse{
		Styles:          []scripttypes.Style{scripttypes.StyleEducational, scripttypes.StyleCasual, scripttypes.StyleDebate},
		Lengths:         []scripttypes.Length{scripttypes.LengthShort, scripttypes.LengthMedium, scripttypes.LengthDetailed},
		Characteristics: scriptbiz.KnownCharacteristics(),
		MaxSpeakers:     scripttypes.MaxSpeakers,
		Defaults: OptionDefaults{
			Style:       biz.DefaultStyle,
			Length:      biz.DefaultLength,
			NumSpeakers: biz.DefaultNumSpeakers,
		},
	})
}

// logFailure logs caller mistakes at warn and everything else at error
func (s *PodcastService) logFailure(c *gin.Context, msg string, err error, fields ...zap.Field) {
	log := s.logger.WithContext(c.Request.Context())
	fields = append(fields, zap.Error(err))
	if apperrors.IsClientError(apperrors.ExtractCode(err)) {
		log.Warn(msg, fields...)
		return
	}
	log.Error(msg, fields...)
}
