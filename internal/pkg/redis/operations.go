package redis

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Set 设置键值（支持过期时间）
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	err := c.rdb.Set(ctx, key, value, expiration).Err()
	if err != nil {
		c.logger.Error("redis set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Get 获取键值，key 不存在时返回 ErrNil
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil && !IsNil(err) {
		c.logger.Error("redis get failed", zap.String("key", key), zap.Error(err))
	}
	return val, err
}

// Del 删除键
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Error("redis del failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return n, err
}

// Eval 执行 Lua 脚本
func (c *Client) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	res, err := c.rdb.Eval(ctx, script, keys, args...).Result()
	if err != nil {
		c.logger.Error("redis eval failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return res, err
}
