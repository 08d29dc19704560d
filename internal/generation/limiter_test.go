package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownLimiter_AllowsFirstGeneration(t *testing.T) {
	limiter := NewCooldownLimiter(30 * time.Second)

	assert.True(t, limiter.CanGenerate("user-1"))
	assert.Zero(t, limiter.Remaining("user-1"))
}

func TestCooldownLimiter_BlocksInsideWindow(t *testing.T) {
	now := time.Now()
	limiter := NewCooldownLimiter(30 * time.Second)
	limiter.now = func() time.Time { return now }

	limiter.MarkGenerated("user-1")

	now = now.Add(10 * time.Second)
	assert.False(t, limiter.CanGenerate("user-1"))
	assert.Equal(t, 20*time.Second, limiter.Remaining("user-1"))
}

func TestCooldownLimiter_AllowsAtWindowBoundary(t *testing.T) {
	now := time.Now()
	limiter := NewCooldownLimiter(30 * time.Second)
	limiter.now = func() time.Time { return now }

	limiter.MarkGenerated("user-1")

	now = now.Add(30 * time.Second)
	assert.True(t, limiter.CanGenerate("user-1"))
	assert.Zero(t, limiter.Remaining("user-1"))
}

func TestCooldownLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewCooldownLimiter(30 * time.Second)

	limiter.MarkGenerated("user-1")

	assert.False(t, limiter.CanGenerate("user-1"))
	assert.True(t, limiter.CanGenerate("user-2"))
}

func TestCooldownLimiter_SweepDropsExpiredEntries(t *testing.T) {
	now := time.Now()
	limiter := NewCooldownLimiter(30 * time.Second)
	limiter.now = func() time.Time { return now }

	limiter.MarkGenerated("expired")
	now = now.Add(20 * time.Second)
	limiter.MarkGenerated("active")

	now = now.Add(15 * time.Second)
	limiter.Sweep()

	limiter.mu.Lock()
	_, hasExpired := limiter.last["expired"]
	_, hasActive := limiter.last["active"]
	limiter.mu.Unlock()

	assert.False(t, hasExpired)
	assert.True(t, hasActive)
	assert.False(t, limiter.CanGenerate("active"))
}
