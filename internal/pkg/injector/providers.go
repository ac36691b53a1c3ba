package injector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	audiotypes "github.com/lk2023060901/knowcast-backend/internal/audio/types"
	"github.com/lk2023060901/knowcast-backend/internal/conf"
	kbbiz "github.com/lk2023060901/knowcast-backend/internal/knowledge/biz"
	kbdata "github.com/lk2023060901/knowcast-backend/internal/knowledge/data"
	kbprovider "github.com/lk2023060901/knowcast-backend/internal/knowledge/provider"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/minio"
	pkgredis "github.com/lk2023060901/knowcast-backend/internal/pkg/redis"
	podcastbiz "github.com/lk2023060901/knowcast-backend/internal/podcast/biz"
	podcastdata "github.com/lk2023060901/knowcast-backend/internal/podcast/data"
	scriptbiz "github.com/lk2023060901/knowcast-backend/internal/script/biz"
	scripttypes "github.com/lk2023060901/knowcast-backend/internal/script/types"
	"github.com/lk2023060901/knowcast-backend/internal/server"
)

// Provider functions shared by wire.go and wire_gen.go

func provideKnowledgeProvider(config *conf.Config) (kbprovider.Provider, error) {
	pc, err := config.Knowledge.Active()
	if err != nil {
		return nil, err
	}
	return kbprovider.NewFactory().Create(pc)
}

// provideRedisClient returns nil when redis is disabled
func provideRedisClient(config *conf.Config, log *logger.Logger) (*pkgredis.Client, func(), error) {
	if !config.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := pkgredis.New(&config.Redis, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

func provideExtractionCache(config *conf.Config, client *pkgredis.Client) kbbiz.Cache {
	if client == nil {
		return nil
	}
	return kbdata.NewExtractionCache(client, config.Knowledge.CacheTTL)
}

func provideKnowledgeBudget(config *conf.Config) (*scriptbiz.KnowledgeBudget, error) {
	return scriptbiz.NewKnowledgeBudget(config.OpenAI.KnowledgeMaxTokens, config.OpenAI.Encoding)
}

func provideStorage(config *conf.Config) (*podcastdata.Storage, error) {
	return podcastdata.NewStorage(config.Storage.OutputDir)
}

// provideMinIOClient returns nil when archiving is disabled
func provideMinIOClient(config *conf.Config, log *logger.Logger) (*minio.Client, func(), error) {
	if !config.MinIO.Enabled {
		return nil, func() {}, nil
	}
	client, err := minio.NewClient(&config.MinIO, log)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.MinIO.RequestTimeout)
	defer cancel()
	if err := client.EnsureBucket(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close minio", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

func provideArchiver(client *minio.Client) podcastbiz.Archiver {
	if client == nil {
		return nil
	}
	return podcastdata.NewArchiver(client)
}

func provideProbes(extractor *kbbiz.Extractor, pipeline *podcastbiz.Pipeline) server.Probes {
	return server.Probes{Extractor: extractor, Podcast: pipeline}
}

func provideGenerateLimiter(config *conf.Config, client *pkgredis.Client) server.GenerateLimiter {
	if !config.RateLimit.Enabled || client == nil {
		return nil
	}
	return server.GenerateLimiter(server.RateLimiter(client, server.RateLimiterConfig{
		MaxRequests: config.RateLimit.Limit,
		Window:      config.RateLimit.Window,
		KeyPrefix:   config.Redis.KeyPrefix,
	}))
}

func newApp(config *conf.Config, log *logger.Logger, httpServer *server.HTTPServer) *App {
	return &App{
		Config:     config,
		Logger:     log,
		HTTPServer: httpServer,
	}
}

func provideChatConfig(config *conf.Config) *scripttypes.ChatConfig {
	return &config.OpenAI
}

func provideSynthesisConfig(config *conf.Config) *audiotypes.SynthesisConfig {
	return &config.ElevenLabs
}
