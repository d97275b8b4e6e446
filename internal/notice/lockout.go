package notice

import (
	"sync"
	"time"
)

// Lockout refuses a repeated action on the same key until its window has
// passed.
type Lockout struct {
	mu     sync.Mutex
	window time.Duration
	held   map[string]*time.Timer
	closed bool
}

// NewLockout creates a lockout holding each key for window.
func NewLockout(window time.Duration) *Lockout {
	return &Lockout{window: window, held: make(map[string]*time.Timer)}
}

// Acquire takes key for the window. It returns false while key is held.
func (l *Lockout) Acquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false
	}
	if _, ok := l.held[key]; ok {
		return false
	}
	var t *time.Timer
	t = time.AfterFunc(l.window, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key] == t {
			delete(l.held, key)
		}
	})
	l.held[key] = t
	return true
}

// Held reports whether key is currently locked.
func (l *Lockout) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

// Release frees key early, e.g. when the action it guarded failed.
func (l *Lockout) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.held[key]; ok {
		t.Stop()
		delete(l.held, key)
	}
}

// Close stops every timer and refuses further acquisitions.
func (l *Lockout) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, t := range l.held {
		t.Stop()
		delete(l.held, key)
	}
	l.closed = true
}
