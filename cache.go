package wpool

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/compilepool/poold/sloghelper"
)

// ResultCache is the optional pre-admission lookup of §4.2: a hit bypasses
// the queue entirely, a miss (or a write failure) never blocks dispatch.
type ResultCache interface {
	Get(ctx context.Context, reqHash string) (*RunResponse, bool)
	Set(ctx context.Context, reqHash string, resp *RunResponse)
}

type noopResultCache struct{}

func (noopResultCache) Get(context.Context, string) (*RunResponse, bool) { return nil, false }
func (noopResultCache) Set(context.Context, string, *RunResponse)        {}

// redisResultCache is grounded on redis_heartbeat_publisher.go's use of
// redis.UniversalOptions/redis.NewUniversalClient, repurposing the same
// client construction to keep a short-lived result cache instead of
// publishing heartbeats over a pub/sub channel.
type redisResultCache struct {
	options *redis.UniversalOptions
	ttl     time.Duration
}

// NewRedisResultCache returns a ResultCache backed by Redis, caching
// successful run results for ttl.
func NewRedisResultCache(options *redis.UniversalOptions, ttl time.Duration) ResultCache {
	return &redisResultCache{options: options, ttl: ttl}
}

func (c *redisResultCache) Get(ctx context.Context, reqHash string) (*RunResponse, bool) {
	logger := sloghelper.FromContext(ctx, sloghelper.ResultCacheLoggerKey)

	client := redis.NewUniversalClient(c.options)
	defer client.Close()

	raw, err := client.Get(ctx, cacheKey(reqHash)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.DebugContext(ctx, "client.Get", slog.Any("err", err))
		}
		return nil, false
	}

	var resp RunResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		logger.WarnContext(ctx, "json.Unmarshal cached result", slog.Any("err", err))
		return nil, false
	}
	return &resp, true
}

func (c *redisResultCache) Set(ctx context.Context, reqHash string, resp *RunResponse) {
	logger := sloghelper.FromContext(ctx, sloghelper.ResultCacheLoggerKey)

	if resp.Err != nil {
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		logger.WarnContext(ctx, "json.Marshal result for cache", slog.Any("err", err))
		return
	}

	client := redis.NewUniversalClient(c.options)
	defer client.Close()

	if err := client.Set(ctx, cacheKey(reqHash), body, c.ttl).Err(); err != nil {
		logger.WarnContext(ctx, "client.Set", slog.Any("err", err))
	}
}

func cacheKey(reqHash string) string {
	return "poold:result:" + reqHash
}
