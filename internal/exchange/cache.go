package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"scalper_bot/internal/models"
	"scalper_bot/pkg/logger"
)

// Feed: источник свечей и котировок.
type Feed interface {
	FetchCandles(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]models.Candle, error)
	FetchTick(ctx context.Context, symbol string) (models.Tick, error)
}

// CachingFeed кэширует свечи в Redis. Несколько циклов и наблюдателей
// запрашивают одни и те же окна, мост дёргается один раз за TTL.
// Котировки не кэшируются.
type CachingFeed struct {
	inner     Feed
	rdb       redis.Cmdable
	ttl       map[models.Timeframe]time.Duration
	namespace string
}

// DefaultCandleTTL: время жизни окна свечей по таймфрейму.
func DefaultCandleTTL() map[models.Timeframe]time.Duration {
	return map[models.Timeframe]time.Duration{
		models.M1:  10 * time.Second,
		models.M5:  30 * time.Second,
		models.M15: time.Minute,
	}
}

func NewCachingFeed(rdb redis.Cmdable, inner Feed, ttl map[models.Timeframe]time.Duration, namespace string) *CachingFeed {
	if ttl == nil {
		ttl = DefaultCandleTTL()
	}
	if namespace == "" {
		namespace = "candles"
	}
	return &CachingFeed{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

func (c *CachingFeed) FetchCandles(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]models.Candle, error) {
	ttl := c.ttl[tf]
	if c.rdb == nil || ttl <= 0 {
		return c.inner.FetchCandles(ctx, symbol, tf, count)
	}

	key := c.cacheKey(symbol, tf, count)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []models.Candle
		if err := sonic.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn("[CACHE] get %s: %v", key, err)
	}

	out, err := c.inner.FetchCandles(ctx, symbol, tf, count)
	if err != nil {
		return nil, err
	}

	if b, err := sonic.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
			logger.Warn("[CACHE] set %s: %v", key, err)
		}
	}
	return out, nil
}

func (c *CachingFeed) FetchTick(ctx context.Context, symbol string) (models.Tick, error) {
	return c.inner.FetchTick(ctx, symbol)
}

func (c *CachingFeed) cacheKey(symbol string, tf models.Timeframe, count int) string {
	return fmt.Sprintf("%s:%s:%s:%d", c.namespace, safeKey(symbol), tf, count)
}

func safeKey(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, ":", "_")
}
