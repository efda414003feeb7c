// Package notifications holds the in-memory toast feed shown on the POS
// terminal. Toasts are fire-and-forget and expire on their own; nothing here
// is durable.
package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a toast for the terminal UI.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Toast is one transient message with a bounded visible lifetime.
type Toast struct {
	ID        uuid.UUID `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier is the write side of the toast feed. Callers fire and forget.
type Notifier interface {
	Notify(level Level, message string)
}

// Center buffers toasts until they expire or a client drains them.
type Center struct {
	mu     sync.Mutex
	ttl    time.Duration
	toasts []Toast
	now    func() time.Time
}

// NewCenter builds a toast center with the given visible lifetime.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Center{ttl: ttl, now: time.Now}
}

// Notify appends a toast. It never blocks and never fails.
func (c *Center) Notify(level Level, message string) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune(now)
	c.toasts = append(c.toasts, Toast{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	})
}

// Active returns the toasts still within their lifetime, oldest first.
func (c *Center) Active() []Toast {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune(now)
	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// Drain returns the active toasts and clears the feed, so a polling client
// shows each toast once.
func (c *Center) Drain() []Toast {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune(now)
	out := c.toasts
	c.toasts = nil
	return out
}

// prune drops expired toasts. Callers must hold the lock.
func (c *Center) prune(now time.Time) {
	kept := c.toasts[:0]
	for _, toast := range c.toasts {
		if toast.ExpiresAt.After(now) {
			kept = append(kept, toast)
		}
	}
	c.toasts = kept
}
