package ingest

import (
	"context"
	"time"

	"campus-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RateLimiter gates the public ingestion endpoint per client subject.
type RateLimiter interface {
	Allow(ctx context.Context, subject string) (bool, error)
}

// RedisLimiter is a fixed-window limiter backed by Redis. Counters are
// bucketed by window and expire on their own, so a crashed process leaves
// no residue.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	clock  func() time.Time
}

func NewRedisLimiter(rdb *redis.Client, perMinute int) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		limit:  perMinute,
		window: time.Minute,
		clock:  time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, subject string) (bool, error) {
	key := utils.WindowKey("ingest", subject, l.clock(), l.window)
	return utils.RateLimitAllow(ctx, l.rdb, key, l.limit, l.window)
}
