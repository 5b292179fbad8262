package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter фиксированное окно на INCR и PEXPIRE.
type RedisLimiter struct {
	db *redis.Client
}

// NewRedisLimiter создает новый экземпляр RedisLimiter.
func NewRedisLimiter(db *redis.Client) *RedisLimiter {
	return &RedisLimiter{db: db}
}

// Allow увеличивает счётчик окна. Первое обращение в окне задаёт время жизни ключа.
func (l *RedisLimiter) Allow(ctx context.Context, key string, rule Rule) (Decision, error) {
	const op = "ratelimit.RedisLimiter.Allow"
	redisKey := bucketKey(rule, key)

	pipe := l.db.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit}, fmt.Errorf("%s: %w", op, err)
	}

	ttl := pttl.Val()
	if ttl < 0 {
		if err := l.db.PExpire(ctx, redisKey, rule.Window).Err(); err != nil {
			return Decision{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit}, fmt.Errorf("%s: %w", op, err)
		}
		ttl = rule.Window
	}

	count := int(incr.Val())
	d := Decision{
		Allowed:   count <= rule.Limit,
		Limit:     rule.Limit,
		Remaining: max(rule.Limit-count, 0),
	}
	if !d.Allowed {
		d.RetryAfter = ttl.Round(time.Second)
		if d.RetryAfter < time.Second {
			d.RetryAfter = time.Second
		}
	}
	return d, nil
}
