package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*Limiter, *time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := New(NewCacheStore())
	l.now = func() time.Time { return now }
	return l, &now
}

func TestFixedWindow(t *testing.T) {
	l, now := newTestLimiter(t)

	// login allows 5 attempts per 15 minutes
	for i := 0; i < 5; i++ {
		res := l.Check(ActionLogin, "a@b.com:1.2.3.4")
		require.True(t, res.Allowed, "attempt %d should be allowed", i+1)
		assert.Equal(t, 4-i, res.RemainingAttempts)
	}

	res := l.Check(ActionLogin, "a@b.com:1.2.3.4")
	require.False(t, res.Allowed)
	assert.Equal(t, 0, res.RemainingAttempts)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	// still blocked just before the window ends
	*now = now.Add(14 * time.Minute)
	res = l.Check(ActionLogin, "a@b.com:1.2.3.4")
	require.False(t, res.Allowed)
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)

	// a full window after the original start, the counter restarts
	*now = now.Add(time.Minute)
	res = l.Check(ActionLogin, "a@b.com:1.2.3.4")
	require.True(t, res.Allowed)
	assert.Equal(t, 4, res.RemainingAttempts)
}

func TestWindowAnchorsToFirstAttempt(t *testing.T) {
	l, now := newTestLimiter(t)

	l.Check(ActionRegister, "x")
	*now = now.Add(59 * time.Minute)
	l.Check(ActionRegister, "x")
	l.Check(ActionRegister, "x")

	// limit reached within the original window
	res := l.Check(ActionRegister, "x")
	require.False(t, res.Allowed)

	// one minute later the window (anchored to the first attempt) has elapsed
	*now = now.Add(time.Minute)
	res = l.Check(ActionRegister, "x")
	require.True(t, res.Allowed)
}

func TestResetIdempotent(t *testing.T) {
	l, _ := newTestLimiter(t)

	// resetting a missing entry is a no-op
	l.Reset(ActionLogin, "nobody")

	for i := 0; i < 6; i++ {
		l.Check(ActionLogin, "a@b.com:1.2.3.4")
	}
	require.False(t, l.Check(ActionLogin, "a@b.com:1.2.3.4").Allowed)

	l.Reset(ActionLogin, "a@b.com:1.2.3.4")
	res := l.Check(ActionLogin, "a@b.com:1.2.3.4")
	require.True(t, res.Allowed)
	assert.Equal(t, 4, res.RemainingAttempts)
}

func TestUnknownActionUnlimited(t *testing.T) {
	l, _ := newTestLimiter(t)
	for i := 0; i < 100; i++ {
		res := l.Check("no_such_action", "x")
		require.True(t, res.Allowed)
		assert.Equal(t, -1, res.RemainingAttempts)
	}
}

func TestIdentifiersIsolated(t *testing.T) {
	l, _ := newTestLimiter(t)
	for i := 0; i < 6; i++ {
		l.Check(ActionLogin, "a@b.com:1.2.3.4")
	}
	require.False(t, l.Check(ActionLogin, "a@b.com:1.2.3.4").Allowed)
	require.True(t, l.Check(ActionLogin, "a@b.com:5.6.7.8").Allowed)
	require.True(t, l.Check(ActionRegister, "a@b.com:1.2.3.4").Allowed)
}

func TestConcurrentChecksSerialized(t *testing.T) {
	l := New(NewCacheStore())

	const n = 100
	done := make(chan Result, n)
	for i := 0; i < n; i++ {
		go func() { done <- l.Check(ActionEvidenceUpload, "uploader") }()
	}

	allowed := 0
	for i := 0; i < n; i++ {
		if (<-done).Allowed {
			allowed++
		}
	}
	// ceiling is 50/hour; concurrent increments must not lose updates
	assert.Equal(t, 50, allowed)
}
