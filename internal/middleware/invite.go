package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// InviteLimiter throttles invite code redemption per user so codes cannot be
// guessed by brute force. Entries idle for longer than ttl are dropped.
type InviteLimiter struct {
	mu       sync.Mutex
	limiters map[uint]*inviteEntry
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

type inviteEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewInviteLimiter allows perMinute attempts per user with the given burst.
func NewInviteLimiter(perMinute, burst int) *InviteLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return &InviteLimiter{
		limiters: make(map[uint]*inviteEntry),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		ttl:      10 * time.Minute,
		now:      time.Now,
	}
}

// Allow consumes one attempt for userID.
func (l *InviteLimiter) Allow(userID uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, e := range l.limiters {
		if now.Sub(e.lastSeen) > l.ttl {
			delete(l.limiters, id)
		}
	}
	e, ok := l.limiters[userID]
	if !ok {
		e = &inviteEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
