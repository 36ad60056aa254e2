package services

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UpdateLimiter throttles repeated updates to the same fixture by the same
// actor. One token bucket per (actor, fixture) pair; entries idle for longer
// than staleAfter are pruned on the way through.
type UpdateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*limiterEntry
	limit      rate.Limit
	burst      int
	staleAfter time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewUpdateLimiter(interval time.Duration, burst int) *UpdateLimiter {
	return &UpdateLimiter{
		buckets:    make(map[string]*limiterEntry),
		limit:      rate.Every(interval),
		burst:      burst,
		staleAfter: 10 * time.Minute,
	}
}

// Allow reports whether the actor may update the fixture right now.
func (l *UpdateLimiter) Allow(actorID, fixtureID int) bool {
	key := fmt.Sprintf("%d:%d", actorID, fixtureID)
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.buckets[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = entry
	}
	entry.lastSeen = now

	if len(l.buckets) > 1024 {
		l.pruneLocked(now)
	}

	return entry.limiter.Allow()
}

func (l *UpdateLimiter) pruneLocked(now time.Time) {
	for key, entry := range l.buckets {
		if now.Sub(entry.lastSeen) > l.staleAfter {
			delete(l.buckets, key)
		}
	}
}
