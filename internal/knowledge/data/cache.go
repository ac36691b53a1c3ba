package data

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lk2023060901/knowcast-backend/internal/knowledge/biz"
	"github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/redis"
)

const defaultCacheTTL = 6 * time.Hour

var _ biz.Cache = (*ExtractionCache)(nil)

// ExtractionCache keeps successful extractions in Redis
type ExtractionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExtractionCache creates a cache; a non-positive ttl uses six hours
func NewExtractionCache(client *redis.Client, ttl time.Duration) *ExtractionCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ExtractionCache{client: client, ttl: ttl}
}

// Get returns the cached result for query; a miss is (nil, false, nil)
func (c *ExtractionCache) Get(ctx context.Context, query string) (*types.ExtractionResult, bool, error) {
	raw, err := c.client.Get(ctx, c.key(query))
	if redis.IsNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var res types.ExtractionResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, false, fmt.Errorf("decode cached extraction: %w", err)
	}
	return &res, true, nil
}

// Set stores res under query
func (c *ExtractionCache) Set(ctx context.Context, query string, res *types.ExtractionResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode extraction: %w", err)
	}
	return c.client.Set(ctx, c.key(query), raw, c.ttl)
}

func (c *ExtractionCache) key(query string) string {
	return c.client.Key("extract", QueryDigest(query))
}

// QueryDigest hashes the case and whitespace normalized query
func QueryDigest(query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
