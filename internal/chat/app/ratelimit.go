package app

import (
	"sync"
	"time"
)

// SlidingWindowLimiter counts allowed sends per user inside a trailing
// window. The check and the recording of a new send are atomic per user, so
// two simultaneous sends cannot both slip past the limit; independent users
// never contend on the same lock beyond the registry lookup.
type SlidingWindowLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	users map[string]*userWindow
}

type userWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

// NewSlidingWindowLimiter create a limiter allowing limit sends per window.
func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		users:  make(map[string]*userWindow),
	}
}

// TryConsume reports whether userID may send now, recording the send when
// allowed. Denial is a normal outcome, not an error.
func (l *SlidingWindowLimiter) TryConsume(userID string) bool {
	w := l.userFor(userID)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= l.limit {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

func (l *SlidingWindowLimiter) userFor(userID string) *userWindow {
	l.mu.RLock()
	w := l.users[userID]
	l.mu.RUnlock()
	if w != nil {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w = l.users[userID]; w == nil {
		w = &userWindow{}
		l.users[userID] = w
	}
	return w
}
