package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"go.uber.org/zap"

	"horoscope-api/forecast"
)

// KV is the subset of RedisClient the forecast cache needs.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// ForecastCache memoizes store selections in Redis for ttl. Redis errors never
// fail a request: reads fall through to the store and failed writes are logged.
type ForecastCache struct {
	store  forecast.Store
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
}

// Pinger is implemented by KV backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ forecast.Store     = (*ForecastCache)(nil)
	_ forecast.Describer = (*ForecastCache)(nil)
	_ forecast.Checker   = (*ForecastCache)(nil)
	_ Pinger             = (*RedisClient)(nil)
)

// NewForecastCache wraps store with a response cache backed by kv.
func NewForecastCache(store forecast.Store, kv KV, ttl time.Duration, logger *zap.Logger) *ForecastCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForecastCache{store: store, kv: kv, ttl: ttl, logger: logger}
}

// Daily implements forecast.Store.
func (c *ForecastCache) Daily(ctx context.Context, q forecast.DailyQuery) (forecast.Selection, error) {
	return c.cached(ctx, forecast.Daily, q, func() (forecast.Selection, error) {
		return c.store.Daily(ctx, q)
	})
}

// Weekly implements forecast.Store.
func (c *ForecastCache) Weekly(ctx context.Context, q forecast.WeeklyQuery) (forecast.Selection, error) {
	return c.cached(ctx, forecast.Weekly, q, func() (forecast.Selection, error) {
		return c.store.Weekly(ctx, q)
	})
}

// Monthly implements forecast.Store.
func (c *ForecastCache) Monthly(ctx context.Context, q forecast.MonthlyQuery) (forecast.Selection, error) {
	return c.cached(ctx, forecast.Monthly, q, func() (forecast.Selection, error) {
		return c.store.Monthly(ctx, q)
	})
}

// Describe reports the wrapped store's details plus the cache TTL.
func (c *ForecastCache) Describe() map[string]any {
	out := map[string]any{}
	if d, ok := c.store.(forecast.Describer); ok {
		maps.Copy(out, d.Describe())
	}
	out["response_cache_ttl"] = c.ttl.String()
	return out
}

// Check runs the wrapped store's check and reports Redis reachability as
// redis_ok. An unreachable Redis only degrades caching, so it is not an error.
func (c *ForecastCache) Check(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	var err error
	if ch, ok := c.store.(forecast.Checker); ok {
		var fields map[string]any
		fields, err = ch.Check(ctx)
		maps.Copy(out, fields)
	}
	if p, ok := c.kv.(Pinger); ok {
		pingErr := p.Ping(ctx)
		if pingErr != nil {
			c.logger.Warn("redis ping failed", zap.Error(pingErr))
		}
		out["redis_ok"] = pingErr == nil
	}
	return out, err
}

func (c *ForecastCache) cached(ctx context.Context, period forecast.Period, q any, load func() (forecast.Selection, error)) (forecast.Selection, error) {
	if c.kv == nil {
		return load()
	}

	key := CacheKey(period, q)
	var sel forecast.Selection
	err := c.kv.Get(ctx, key, &sel)
	if err == nil {
		if sel.Records == nil {
			sel.Records = []forecast.Record{}
		}
		return sel, nil
	}
	if !errors.Is(err, ErrMiss) {
		c.logger.Warn("response cache read failed", zap.String("key", key), zap.Error(err))
	}

	sel, err = load()
	if err != nil {
		return forecast.Selection{}, err
	}

	if err := c.kv.Set(ctx, key, sel, c.ttl); err != nil {
		c.logger.Warn("response cache write failed", zap.String("key", key), zap.Error(err))
	}
	return sel, nil
}

// CacheKey derives the Redis key for a normalized query.
func CacheKey(period forecast.Period, q any) string {
	return fmt.Sprintf("forecast:v1:%s:%s", period, queryHash(q))
}

func queryHash(q any) string {
	jsonData, _ := json.Marshal(q)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf("%x", hash[:8])
}
