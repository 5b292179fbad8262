package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type window struct {
	start time.Time
	count int
}

// MemoryLimiter фиксированное окно на ключ в пределах одного процесса.
// Окно открывается первым запросом ключа. Вытесненный из LRU ключ начинает новое окно.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows *lru.Cache[string, *window]
	now     func() time.Time
}

// NewMemoryLimiter создает новый экземпляр MemoryLimiter на maxKeys ключей.
func NewMemoryLimiter(maxKeys int) (*MemoryLimiter, error) {
	const op = "ratelimit.NewMemoryLimiter"
	windows, err := lru.New[string, *window](maxKeys)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &MemoryLimiter{windows: windows, now: time.Now}, nil
}

// Allow считает запрос в текущем окне ключа. За окно пропускается не больше rule.Limit запросов.
func (l *MemoryLimiter) Allow(_ context.Context, key string, rule Rule) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := bucketKey(rule, key)
	w, ok := l.windows.Get(k)
	if !ok || !now.Before(w.start.Add(rule.Window)) {
		w = &window{start: now}
		l.windows.Add(k, w)
	}

	d := Decision{Limit: rule.Limit}
	if w.count < rule.Limit {
		w.count++
		d.Allowed = true
		d.Remaining = rule.Limit - w.count
		return d, nil
	}

	wait := w.start.Add(rule.Window).Sub(now)
	d.RetryAfter = max(wait.Round(time.Second), time.Second)
	return d, nil
}
