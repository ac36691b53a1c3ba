package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/knowcast-backend/internal/conf"
	kbservice "github.com/lk2023060901/knowcast-backend/internal/knowledge/service"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	podcastservice "github.com/lk2023060901/knowcast-backend/internal/podcast/service"
)

const healthPath = "/api/health"

// Readiness reports whether a component was constructed with everything it needs
type Readiness interface {
	Ready() bool
}

// Probes feed the health endpoint
type Probes struct {
	Extractor Readiness
	Podcast   Readiness
}

// GenerateLimiter guards the podcast generation endpoint, nil when rate limiting is off
type GenerateLimiter gin.HandlerFunc

type HTTPServer struct {
	server *http.Server
	router *gin.Engine
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	knowledgeService *kbservice.KnowledgeService,
	podcastService *podcastservice.PodcastService,
	probes Probes,
	limiter GenerateLimiter,
) *HTTPServer {
	if config.Server.Mode != "" {
		gin.SetMode(config.Server.Mode)
	}
	log = log.Named("http")

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log, logger.MiddlewareOptions{SkipPaths: []string{healthPath}}))
	router.Use(cors.New(corsConfig(config.Server.CORSOrigins)))

	router.GET(healthPath, health(probes))

	api := router.Group("/api")
	knowledgeService.RegisterRoutes(api)
	if limiter != nil {
		podcastService.RegisterRoutes(api, gin.HandlerFunc(limiter))
	} else {
		podcastService.RegisterRoutes(api)
	}

	return &HTTPServer{
		server: &http.Server{
			Addr:         config.Server.Addr(),
			Handler:      router,
			ReadTimeout:  config.Server.ReadTimeout,
			WriteTimeout: config.Server.WriteTimeout,
		},
		router: router,
		logger: log,
	}
}

// Handler exposes the router, mainly for tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader}
	cfg.ExposeHeaders = []string{"Content-Disposition", logger.RequestIDHeader, "Retry-After"}

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func health(p Probes) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":            "ok",
			"extractor_ready":   p.Extractor != nil && p.Extractor.Ready(),
			"podcast_gen_ready": p.Podcast != nil && p.Podcast.Ready(),
			"time":              time.Now().Format(time.RFC3339),
		})
	}
}
