package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestLoginRateLimiter(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewLoginRateLimiter(2, time.Minute)
	defer rl.Close()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other IPs are independent")

	retry := rl.RetryAfterSeconds("10.0.0.1")
	assert.Greater(t, retry, 0)
	assert.LessOrEqual(t, retry, 61)

	rl.Reset("10.0.0.1")
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestWindowExpires(t *testing.T) {
	rl := NewLoginRateLimiter(1, 20*time.Millisecond)
	defer rl.Close()

	assert.True(t, rl.Allow("ip"))
	assert.False(t, rl.Allow("ip"))
	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("ip"))
}

func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", ExtractIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", ExtractIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
	assert.Equal(t, "203.0.113.1", ExtractIP(r))
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(125))
	assert.Equal(t, "9 second(s)", FormatRetryMessage(9))
}
