package repository

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter keeps a token-bucket limiter per actor. It serves as the
// fallback when Redis is unreachable, so counts are per-process and reset
// on restart.
type MemoryLimiter struct {
	limiters sync.Map
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{}
}

func (m *MemoryLimiter) Allow(ctx context.Context, actorID int64, limit int, window time.Duration) (bool, error) {
	if limit < 1 {
		return false, nil
	}

	val, ok := m.limiters.Load(actorID)
	if !ok {
		lim := rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		val, _ = m.limiters.LoadOrStore(actorID, lim)
	}

	return val.(*rate.Limiter).Allow(), nil
}
