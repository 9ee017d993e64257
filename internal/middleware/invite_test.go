package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInviteLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewInviteLimiter(6, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1), "burst spent")
	assert.True(t, l.Allow(2), "other users have their own budget")

	now = now.Add(10 * time.Second) // 6/min refills one token every 10s
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
}

func TestInviteLimiter_DropsIdleEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewInviteLimiter(1, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(1))
	now = now.Add(time.Hour)
	assert.True(t, l.Allow(2))
	assert.Len(t, l.limiters, 1)
}
