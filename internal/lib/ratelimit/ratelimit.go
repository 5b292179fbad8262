// Package ratelimit ограничивает число запросов на ключ за окно времени.
//
// RedisLimiter считает запросы фиксированным окном в Redis и годится для
// нескольких инстансов API. MemoryLimiter держит token bucket на ключ в памяти
// процесса, число ключей ограничено LRU.
package ratelimit

import (
	"context"
	"time"
)

// Rule лимит для одного маршрута.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Decision результат проверки лимита.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter решает, пропускать ли очередной запрос ключа key по правилу rule.
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (Decision, error)
}

func bucketKey(rule Rule, key string) string {
	return "ratelimit:" + rule.Name + ":" + key
}
