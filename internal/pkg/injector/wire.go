//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"

	audiobiz "github.com/lk2023060901/knowcast-backend/internal/audio/biz"
	audioprovider "github.com/lk2023060901/knowcast-backend/internal/audio/provider"
	"github.com/lk2023060901/knowcast-backend/internal/conf"
	kbbiz "github.com/lk2023060901/knowcast-backend/internal/knowledge/biz"
	kbservice "github.com/lk2023060901/knowcast-backend/internal/knowledge/service"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	podcastbiz "github.com/lk2023060901/knowcast-backend/internal/podcast/biz"
	podcastdata "github.com/lk2023060901/knowcast-backend/internal/podcast/data"
	podcastservice "github.com/lk2023060901/knowcast-backend/internal/podcast/service"
	scriptbiz "github.com/lk2023060901/knowcast-backend/internal/script/biz"
	scriptprovider "github.com/lk2023060901/knowcast-backend/internal/script/provider"
	"github.com/lk2023060901/knowcast-backend/internal/server"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	// Data layer
	dataProviderSet,

	// Pipeline stages
	stageProviderSet,

	// HTTP services
	httpServiceProviderSet,

	// Servers
	serverProviderSet,
)

// Data layer providers
var dataProviderSet = wire.NewSet(
	provideRedisClient,
	provideMinIOClient,
	provideExtractionCache,
	provideStorage,
	provideArchiver,
	wire.Bind(new(podcastbiz.OutputLocator), new(*podcastdata.Storage)),
)

// Stage providers
var stageProviderSet = wire.NewSet(
	provideKnowledgeProvider,
	kbbiz.NewExtractor,
	wire.Bind(new(podcastbiz.KnowledgeStage), new(*kbbiz.Extractor)),

	provideChatConfig,
	scriptprovider.NewOpenAIChat,
	wire.Bind(new(scriptbiz.ChatCompleter), new(*scriptprovider.OpenAIChat)),
	provideKnowledgeBudget,
	scriptbiz.NewGenerator,
	wire.Bind(new(podcastbiz.ScriptStage), new(*scriptbiz.Generator)),

	provideSynthesisConfig,
	audioprovider.NewElevenLabs,
	wire.Bind(new(audiobiz.Synthesizer), new(*audioprovider.ElevenLabs)),
	audiobiz.NewGenerator,
	wire.Bind(new(podcastbiz.AudioStage), new(*audiobiz.Generator)),

	podcastbiz.NewGenerator,
	podcastbiz.NewPipeline,
)

// HTTP service providers
var httpServiceProviderSet = wire.NewSet(
	kbservice.NewKnowledgeService,
	podcastservice.NewPodcastService,
)

// Server providers
var serverProviderSet = wire.NewSet(
	provideProbes,
	provideGenerateLimiter,
	server.NewHTTPServer,
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(ProviderSet, newApp)
	return nil, nil, nil
}
