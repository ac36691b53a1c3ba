package redis

import (
	"errors"
	"time"
)

// Config Redis 配置
//
// 一个地址为单机模式；多个地址为集群模式；设置 MasterName 时为哨兵模式。
type Config struct {
	// Enabled 为 false 时不创建客户端，缓存与限流自动关闭
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	Addrs      []string `mapstructure:"addrs" yaml:"addrs"`             // host:port 列表
	MasterName string   `mapstructure:"master_name" yaml:"master_name"` // 哨兵主节点名称

	Username string `mapstructure:"username" yaml:"username"` // Redis 6.0+
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`

	// 连接池配置
	PoolSize     int `mapstructure:"pool_size" yaml:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns" yaml:"min_idle_conns"`

	// 超时配置
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// KeyPrefix 所有业务 key 的前缀
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Addrs:        []string{"localhost:6379"},
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
		KeyPrefix:    "knowcast",
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return errors.New("redis: addrs is required")
	}
	for _, addr := range c.Addrs {
		if addr == "" {
			return errors.New("redis: addrs must not contain empty entries")
		}
	}
	if c.DB < 0 || c.DB > 15 {
		return errors.New("redis: db must be between 0 and 15")
	}
	if c.PoolSize <= 0 {
		return errors.New("redis: pool_size must be > 0")
	}
	if c.MinIdleConns < 0 || c.MinIdleConns > c.PoolSize {
		return errors.New("redis: min_idle_conns must be within [0, pool_size]")
	}
	if c.DialTimeout <= 0 {
		return errors.New("redis: dial_timeout must be > 0")
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return errors.New("redis: read/write timeouts must be >= 0")
	}
	if c.MaxRetries < 0 {
		return errors.New("redis: max_retries must be >= 0")
	}
	return nil
}

// Key 拼接带前缀的 key
func (c *Config) Key(parts ...string) string {
	key := c.KeyPrefix
	for _, p := range parts {
		if key == "" {
			key = p
			continue
		}
		key += ":" + p
	}
	return key
}
