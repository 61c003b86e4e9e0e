package ratelimit

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/restom/restom-backend/pkg/logger"
)

// Limiter bounds how often an identity (phone or client IP) may hit the
// OTP endpoints, independently of the per-challenge attempt counter.
type Limiter interface {
	// Allow records one hit for key and reports whether it is still
	// inside the window. The limiter fails open: on backend errors the
	// request is allowed rather than blocking logins on Redis health.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type redisLimiter struct {
	client redis.UniversalClient
}

func NewRedisLimiter(client redis.UniversalClient) Limiter {
	return &redisLimiter{client: client}
}

func NewRedisClient(url, password string, db int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	opts.DB = db
	return redis.NewClient(opts), nil
}

// Allow implements a sliding window over a Redis sorted set: stale hits
// are trimmed, the current hit is added, and the remaining cardinality is
// compared against the limit, all in one pipeline round trip.
func (l *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Hash the key for privacy, as with rate-limit keys elsewhere.
	hashed := fmt.Sprintf("ratelimit:%x", sha256.Sum256([]byte(key)))

	now := time.Now()
	windowStart := now.Add(-window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, hashed, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, hashed, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	card := pipe.ZCard(ctx, hashed)
	pipe.Expire(ctx, hashed, window)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.WarnContext(ctx, "Rate limit check failed, allowing request", "error", err)
		return true, nil
	}

	return card.Val() <= int64(limit), nil
}
