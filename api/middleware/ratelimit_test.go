package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestLimiterSet_SweepsIdleEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	set := &limiterSet{
		entries: map[string]*limiterEntry{},
		limit:   rate.Limit(1),
		burst:   1,
		now:     func() time.Time { return now },
	}

	first := set.get("a")
	assert.Same(t, first, set.get("a"))

	now = now.Add(2 * time.Hour)
	set.get("b")
	assert.NotContains(t, set.entries, "a")
	assert.Contains(t, set.entries, "b")
}
