package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	audiotypes "github.com/lk2023060901/knowcast-backend/internal/audio/types"
	knowledgetypes "github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/minio"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/redis"
	scripttypes "github.com/lk2023060901/knowcast-backend/internal/script/types"
)

type Config struct {
	Server     ServerConfig               `mapstructure:"server"`
	Log        logger.Config              `mapstructure:"log"`
	Knowledge  KnowledgeConfig            `mapstructure:"knowledge"`
	OpenAI     scripttypes.ChatConfig     `mapstructure:"openai"`
	ElevenLabs audiotypes.SynthesisConfig `mapstructure:"elevenlabs"`
	Redis      redis.Config               `mapstructure:"redis"`
	MinIO      minio.Config               `mapstructure:"minio"`
	Storage    StorageConfig              `mapstructure:"storage"`
	RateLimit  RateLimitConfig            `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr returns host:port
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KnowledgeConfig struct {
	// Provider selects the answer service: valyu or tavily
	Provider string                        `mapstructure:"provider"`
	Valyu    knowledgetypes.ProviderConfig `mapstructure:"valyu"`
	Tavily   knowledgetypes.ProviderConfig `mapstructure:"tavily"`
	// CacheTTL applies when Redis is enabled
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Active returns the configuration of the selected provider with its identity filled in
func (c *KnowledgeConfig) Active() (*knowledgetypes.ProviderConfig, error) {
	var pc knowledgetypes.ProviderConfig
	switch knowledgetypes.ProviderID(strings.ToLower(c.Provider)) {
	case knowledgetypes.ProviderValyu:
		pc = c.Valyu
		pc.ID, pc.Name = knowledgetypes.ProviderValyu, "Valyu.ai"
		if pc.APIHost == "" {
			pc.APIHost = "https://api.valyu.ai"
		}
	case knowledgetypes.ProviderTavily:
		pc = c.Tavily
		pc.ID, pc.Name = knowledgetypes.ProviderTavily, "Tavily"
		if pc.APIHost == "" {
			pc.APIHost = "https://api.tavily.com"
		}
	default:
		return nil, apperrors.New(apperrors.ErrConfigInvalid, fmt.Sprintf("unknown knowledge provider %q", c.Provider))
	}
	return &pc, nil
}

type StorageConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"` // requests per window per client IP
	Window  time.Duration `mapstructure:"window"`
}

// envAliases binds the conventional credential variables next to the KNOWCAST_ ones
var envAliases = map[string]string{
	"knowledge.valyu.api_key":  "VALYU_API_KEY",
	"knowledge.tavily.api_key": "TAVILY_API_KEY",
	"openai.api_key":           "OPENAI_API_KEY",
	"openai.base_url":          "OPENAI_BASE_URL",
	"elevenlabs.api_key":       "ELEVENLABS_API_KEY",
}

const envPrefix = "KNOWCAST"

// LoadConfig reads .env files (missing ones are skipped), then path (optional), then
// the environment. Later sources win.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), alias); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", alias, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5001,
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    10 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Log: *logger.DefaultConfig(),
		Knowledge: KnowledgeConfig{
			Provider: string(knowledgetypes.ProviderValyu),
			CacheTTL: 6 * time.Hour,
		},
		OpenAI: scripttypes.ChatConfig{
			Model:   scripttypes.DefaultModel,
			Timeout: 2 * time.Minute,
		},
		ElevenLabs: audiotypes.SynthesisConfig{
			APIHost:       audiotypes.DefaultAPIHost,
			DialogueModel: audiotypes.DefaultDialogueModel,
			SpeechModel:   audiotypes.DefaultSpeechModel,
			OutputFormat:  audiotypes.DefaultOutputFormat,
			Timeout:       5 * time.Minute,
		},
		Redis:   *redis.DefaultConfig(),
		MinIO:   *minio.DefaultConfig(),
		Storage: StorageConfig{OutputDir: "podcasts"},
		RateLimit: RateLimitConfig{
			Limit:  10,
			Window: time.Minute,
		},
	}
}

// setDefaults registers the keys that may be overridden from the environment alone
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("knowledge.provider", d.Knowledge.Provider)
	v.SetDefault("knowledge.cache_ttl", d.Knowledge.CacheTTL)
	v.SetDefault("openai.model", d.OpenAI.Model)
	v.SetDefault("openai.knowledge_max_tokens", 0)
	v.SetDefault("elevenlabs.api_host", d.ElevenLabs.APIHost)
	v.SetDefault("elevenlabs.dialogue_model", d.ElevenLabs.DialogueModel)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addrs", d.Redis.Addrs)
	v.SetDefault("redis.password", "")
	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.bucket", d.MinIO.Bucket)
	v.SetDefault("storage.output_dir", d.Storage.OutputDir)
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.limit", d.RateLimit.Limit)
	v.SetDefault("ratelimit.window", d.RateLimit.Window)
}

// Validate checks every section; a missing credential is a config-missing error
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.New(apperrors.ErrConfigInvalid, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if err := c.Log.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfigInvalid, "log: "+err.Error())
	}

	provider, err := c.Knowledge.Active()
	if err != nil {
		return err
	}
	if provider.APIKey == "" {
		return apperrors.NewConfigMissingError(strings.ToUpper(string(provider.ID)) + "_API_KEY")
	}
	if c.OpenAI.APIKey == "" {
		return apperrors.NewConfigMissingError("OPENAI_API_KEY")
	}
	if c.ElevenLabs.APIKey == "" {
		return apperrors.NewConfigMissingError("ELEVENLABS_API_KEY")
	}
	if err := c.OpenAI.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfigInvalid, "openai: "+err.Error())
	}
	if err := c.ElevenLabs.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfigInvalid, "elevenlabs: "+err.Error())
	}

	if strings.TrimSpace(c.Storage.OutputDir) == "" {
		return apperrors.NewConfigMissingError("storage.output_dir")
	}

	if c.Redis.Enabled {
		if err := c.Redis.Validate(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrConfigInvalid, "redis: "+err.Error())
		}
	}
	if c.MinIO.Enabled {
		c.MinIO.SetDefaults()
		if err := c.MinIO.Validate(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrConfigInvalid, err.Error())
		}
	}
	if c.RateLimit.Enabled {
		if !c.Redis.Enabled {
			return apperrors.New(apperrors.ErrConfigInvalid, "ratelimit requires redis")
		}
		if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
			return apperrors.New(apperrors.ErrConfigInvalid, "ratelimit limit and window must be positive")
		}
	}
	return nil
}
