package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		},
	})
	s, err := tok.SignedString([]byte("backend-only-secret"))
	require.NoError(t, err)
	return s
}

func TestInspect(t *testing.T) {
	now := time.Now()

	info, err := Inspect(signed(t, now.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "1", info.Subject)
	assert.Equal(t, "admin", info.Username)
	assert.False(t, info.Expired(now))

	info, err = Inspect(signed(t, now.Add(-time.Minute)))
	require.NoError(t, err, "expired tokens are still readable")
	assert.True(t, info.Expired(now))

	_, err = Inspect("opaque-session-token")
	assert.Error(t, err)
}

func TestSealer(t *testing.T) {
	s := NewSealer("console-secret")
	assert.False(t, s.Ephemeral())

	sealed, err := s.Seal("token-123")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "token-123")

	plain, err := NewSealer("console-secret").Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "token-123", plain)

	_, err = NewSealer("other-secret").Open(sealed)
	assert.ErrorIs(t, err, ErrUnsealable)

	_, err = s.Open("!!")
	assert.ErrorIs(t, err, ErrUnsealable)

	assert.True(t, NewSealer("").Ephemeral())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLoginRateLimiter(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewLoginRateLimiter()
	rl.now = clock.Now

	for i := 0; i < 5; i++ {
		ok, remaining, _ := rl.Allow("1.2.3.4|admin")
		require.True(t, ok, "attempt %d", i+1)
		assert.Equal(t, 4-i, remaining)
	}

	ok, _, wait := rl.Allow("1.2.3.4|admin")
	assert.False(t, ok)
	assert.Equal(t, 15*time.Minute, wait)

	ok, _, _ = rl.Allow("1.2.3.4|other")
	assert.True(t, ok, "keys are independent")

	clock.Advance(10 * time.Minute)
	ok, _, wait = rl.Allow("1.2.3.4|admin")
	assert.False(t, ok)
	assert.Equal(t, 5*time.Minute, wait)

	clock.Advance(5 * time.Minute)
	ok, remaining, _ := rl.Allow("1.2.3.4|admin")
	assert.True(t, ok)
	assert.Equal(t, 4, remaining)

	rl.Reset("1.2.3.4|admin")
	clock.Advance(time.Hour)
	rl.Sweep()
	assert.Equal(t, 0, rl.Len())
}

func TestRateLimiterRunStops(t *testing.T) {
	rl := NewLoginRateLimiter()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	<-done
}
