// Package notice holds short-lived per-owner banners and resubmit lockouts.
// Every timer it starts is cancellable and is stopped by Close.
package notice

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"patient-portal-server/internal/live"
)

// Level is the banner style.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one transient banner.
type Notice struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	PostedAt  time.Time `json:"postedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type entry struct {
	notice Notice
	timer  *time.Timer
}

// Board keeps at most one notice per owner. A newer notice replaces the
// older one and cancels its dismissal timer.
type Board struct {
	mu      sync.Mutex
	ttl     time.Duration
	hub     *live.Hub
	entries map[string]*entry
	closed  bool
}

// NewBoard creates a board whose notices expire after ttl. hub may be nil.
func NewBoard(ttl time.Duration, hub *live.Hub) *Board {
	return &Board{ttl: ttl, hub: hub, entries: make(map[string]*entry)}
}

// Post replaces the owner's notice.
func (b *Board) Post(owner string, level Level, message string) Notice {
	now := time.Now().UTC()
	n := Notice{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		PostedAt:  now,
		ExpiresAt: now.Add(b.ttl),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return n
	}
	if old, ok := b.entries[owner]; ok {
		old.timer.Stop()
	}
	e := &entry{notice: n}
	e.timer = time.AfterFunc(b.ttl, func() { b.expire(owner, e) })
	b.entries[owner] = e
	b.mu.Unlock()

	b.publish(owner)
	return n
}

// Success posts a success notice.
func (b *Board) Success(owner, message string) Notice {
	return b.Post(owner, LevelSuccess, message)
}

// Error posts an error notice.
func (b *Board) Error(owner, message string) Notice {
	return b.Post(owner, LevelError, message)
}

// Current returns the owner's live notice, if any.
func (b *Board) Current(owner string) (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[owner]
	if !ok {
		return Notice{}, false
	}
	return e.notice, true
}

// Dismiss removes the owner's notice before it expires.
func (b *Board) Dismiss(owner string) {
	b.mu.Lock()
	e, ok := b.entries[owner]
	if ok {
		e.timer.Stop()
		delete(b.entries, owner)
	}
	b.mu.Unlock()

	if ok {
		b.publish(owner)
	}
}

// Close stops every pending timer. Posts after Close are not stored.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for owner, e := range b.entries {
		e.timer.Stop()
		delete(b.entries, owner)
	}
	b.closed = true
}

func (b *Board) expire(owner string, e *entry) {
	b.mu.Lock()
	current, ok := b.entries[owner]
	if !ok || current != e {
		b.mu.Unlock()
		return
	}
	delete(b.entries, owner)
	b.mu.Unlock()

	b.publish(owner)
}

func (b *Board) publish(owner string) {
	if b.hub != nil {
		b.hub.Notify(live.NoticeTopic(owner))
	}
}
