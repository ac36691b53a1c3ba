package server

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/response"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/validator"
)

// ScriptRunner runs a Lua script atomically, implemented by *redis.Client
type ScriptRunner interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// RateLimiterConfig bounds requests per client IP
type RateLimiterConfig struct {
	// MaxRequests allowed within Window
	MaxRequests int
	Window      time.Duration
	// KeyPrefix is usually the redis key_prefix
	KeyPrefix string
}

// slidingWindow runs atomically. Scores are unix milliseconds; members are nanosecond
// timestamps so requests in the same millisecond do not collide.
const slidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local current = redis.call('ZCARD', key)

if current < limit then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, window)
	return {1, limit - current - 1, now + window}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
return {0, 0, tonumber(oldest) + window}
`

// RateLimiter is a redis sliding window limiter keyed by client IP. It logs through the
// request logger that GinLogger stores in the context.
func RateLimiter(runner ScriptRunner, cfg RateLimiterConfig) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "knowcast"
	}
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:rate_limit:ip:%s", cfg.KeyPrefix, validator.ClientIP(c.ClientIP(), "unknown"))
		now := time.Now()

		allowed, remaining, reset, err := checkRateLimit(c.Request.Context(), runner, key, now, cfg)
		if err != nil {
			// fail open
			logger.FromContext(c.Request.Context()).Named("ratelimit").Error("rate limiter error", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !allowed {
			retry := int(time.Until(reset).Round(time.Second) / time.Second)
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			response.HandleError(c, apperrors.New(apperrors.ErrTooManyRequests,
				fmt.Sprintf("try again in %d seconds", retry)))
			c.Abort()
			return
		}

		c.Next()
	}
}

func checkRateLimit(ctx context.Context, runner ScriptRunner, key string, now time.Time, cfg RateLimiterConfig) (bool, int, time.Time, error) {
	res, err := runner.Eval(ctx, slidingWindow, []string{key},
		now.UnixMilli(), cfg.Window.Milliseconds(), cfg.MaxRequests, strconv.FormatInt(now.UnixNano(), 10))
	if err != nil {
		return false, 0, time.Time{}, err
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("invalid rate limit result: %v", res)
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	reset, _ := values[2].(int64)

	return allowed == 1, int(remaining), time.UnixMilli(reset), nil
}
