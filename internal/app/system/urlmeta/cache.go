package urlmeta

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long fetched metadata stays fresh. Page titles
// rarely change; a day keeps repeat captures of popular pages cheap.
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "urlmeta:"

// CachedFetcher wraps a Fetcher with a Redis read-through cache keyed by
// normalized URL. Cache trouble is never surfaced: a miss, a marshal
// error, or an unreachable Redis all degrade to a direct fetch.
type CachedFetcher struct {
	inner Fetcher
	rdb   *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedFetcher wraps inner with the given Redis client. A ttl of zero
// uses DefaultCacheTTL.
func NewCachedFetcher(inner Fetcher, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{inner: inner, rdb: rdb, ttl: ttl, log: logger}
}

// Fetch returns cached metadata when present, otherwise fetches and
// stores. Only successful fetches are cached; failures stay uncached so a
// transiently broken page gets another chance next time.
func (c *CachedFetcher) Fetch(ctx context.Context, pageURL string) (Metadata, error) {
	key := cacheKeyPrefix + pageURL

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var meta Metadata
		if jerr := json.Unmarshal(data, &meta); jerr == nil {
			return meta, nil
		}
		// Corrupt entry: drop it and fall through to a fresh fetch.
		c.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		c.log.Debug("metadata cache read failed", zap.String("url", pageURL), zap.Error(err))
	}

	meta, err := c.inner.Fetch(ctx, pageURL)
	if err != nil {
		return meta, err
	}

	if data, jerr := json.Marshal(meta); jerr == nil {
		if serr := c.rdb.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.log.Debug("metadata cache write failed", zap.String("url", pageURL), zap.Error(serr))
		}
	}
	return meta, nil
}
