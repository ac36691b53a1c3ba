package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
)

// Client Redis 客户端封装
type Client struct {
	config *Config
	logger *logger.Logger
	rdb    redis.UniversalClient
}

// New 创建 Redis 客户端并做一次健康检查
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		MasterName:   cfg.MasterName,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	})

	client := NewWithUniversal(rdb, cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	client.logger.Info("redis client initialized successfully",
		zap.Strings("addrs", cfg.Addrs),
		zap.String("master_name", cfg.MasterName),
		zap.Int("db", cfg.DB),
	)
	return client, nil
}

// NewWithUniversal 包装一个已创建的 go-redis 客户端
func NewWithUniversal(rdb redis.UniversalClient, cfg *Config, log *logger.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.L()
	}
	return &Client{config: cfg, logger: log.Named("redis"), rdb: rdb}
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key 拼接带前缀的 key
func (c *Client) Key(parts ...string) string {
	return c.config.Key(parts...)
}

// Universal 返回底层 go-redis 客户端
func (c *Client) Universal() redis.UniversalClient {
	return c.rdb
}
