package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlidingWindowLimiter_DeniesOverLimit(t *testing.T) {
	limiter := NewSlidingWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.TryConsume("user-1"), "send %d should be allowed", i+1)
	}
	assert.False(t, limiter.TryConsume("user-1"), "fourth send should be denied")
}

func TestSlidingWindowLimiter_PerUserIsolation(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, time.Minute)

	assert.True(t, limiter.TryConsume("user-1"))
	assert.False(t, limiter.TryConsume("user-1"))

	// A different user has their own window.
	assert.True(t, limiter.TryConsume("user-2"))
}

func TestSlidingWindowLimiter_WindowSlides(t *testing.T) {
	current := time.Now()
	limiter := NewSlidingWindowLimiter(2, time.Minute)
	limiter.now = func() time.Time { return current }

	assert.True(t, limiter.TryConsume("user-1"))
	assert.True(t, limiter.TryConsume("user-1"))
	assert.False(t, limiter.TryConsume("user-1"))

	// 30s later the window is still full.
	current = current.Add(30 * time.Second)
	assert.False(t, limiter.TryConsume("user-1"))

	// Past the window both stamps expire.
	current = current.Add(31 * time.Second)
	assert.True(t, limiter.TryConsume("user-1"))
}

func TestSlidingWindowLimiter_DeniedSendConsumesNothing(t *testing.T) {
	current := time.Now()
	limiter := NewSlidingWindowLimiter(1, time.Minute)
	limiter.now = func() time.Time { return current }

	assert.True(t, limiter.TryConsume("user-1"))

	// Hammering while denied must not extend the window.
	for i := 0; i < 10; i++ {
		current = current.Add(5 * time.Second)
		assert.False(t, limiter.TryConsume("user-1"))
	}

	// 61s after the single allowed send the user is clear again.
	current = current.Add(11 * time.Second)
	assert.True(t, limiter.TryConsume("user-1"))
}

func TestSlidingWindowLimiter_ConcurrentConsume(t *testing.T) {
	const limit = 15
	limiter := NewSlidingWindowLimiter(limit, time.Minute)

	var wg sync.WaitGroup
	allowed := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- limiter.TryConsume("user-1")
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	assert.Equal(t, limit, count, "exactly the window limit should be granted")
}
