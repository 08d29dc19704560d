package generation

import (
	"sync"
	"time"
)

// CooldownStore throttles an expensive operation per identity. The seam
// exists so a shared implementation (e.g. an external cache) can replace
// the in-process one without touching the workflow.
type CooldownStore interface {
	// CanGenerate reports whether the identity has no recorded generation
	// or its cooldown has elapsed.
	CanGenerate(key string) bool
	// Remaining returns how long until the identity may generate again.
	// Zero when generation is allowed now.
	Remaining(key string) time.Duration
	// MarkGenerated records "now" as the identity's last generation time.
	// Called only after a successful generation.
	MarkGenerated(key string)
}

// CooldownLimiter is an in-memory keyed cooldown store. Entries are swept
// once they can no longer affect a decision.
type CooldownLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

// NewCooldownLimiter creates a limiter with the given cooldown window.
func NewCooldownLimiter(cooldown time.Duration) *CooldownLimiter {
	return &CooldownLimiter{
		cooldown: cooldown,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// CanGenerate implements CooldownStore.
func (l *CooldownLimiter) CanGenerate(key string) bool {
	return l.Remaining(key) == 0
}

// Remaining implements CooldownStore.
func (l *CooldownLimiter) Remaining(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.last[key]
	if !ok {
		return 0
	}

	elapsed := l.now().Sub(last)
	if elapsed >= l.cooldown {
		delete(l.last, key)
		return 0
	}
	return l.cooldown - elapsed
}

// MarkGenerated implements CooldownStore.
func (l *CooldownLimiter) MarkGenerated(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last[key] = l.now()
}

// Sweep drops expired entries. The workflow calls this periodically so the
// map does not grow with one stale entry per identity ever seen.
func (l *CooldownLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, last := range l.last {
		if now.Sub(last) >= l.cooldown {
			delete(l.last, key)
		}
	}
}
