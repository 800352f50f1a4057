package notify

import (
	"log/slog"
	"sync"
	"time"
)

// DismissAfter is how long a banner stays visible.
const DismissAfter = 3 * time.Second

// Notification is one transient banner.
type Notification struct {
	Title   string
	Message string
	ShownAt time.Time
}

// Expired reports whether the banner's display window has passed.
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.ShownAt) >= DismissAfter
}

// Center collects transient notifications. A newer banner replaces
// the visible one immediately; there is no queue of stale banners.
type Center struct {
	mu       sync.Mutex
	current  *Notification
	listener func(Notification)
	logger   *slog.Logger
}

// NewCenter creates an empty notification center.
func NewCenter(logger *slog.Logger) *Center {
	if logger == nil {
		logger = slog.Default()
	}
	return &Center{logger: logger}
}

// SetListener registers a callback fired on every Notify. The UI
// uses this to wake its event loop.
func (c *Center) SetListener(fn func(Notification)) {
	c.mu.Lock()
	c.listener = fn
	c.mu.Unlock()
}

// Notify implements domain.Notifier.
func (c *Center) Notify(title, message string) {
	n := Notification{Title: title, Message: message, ShownAt: time.Now()}

	c.mu.Lock()
	c.current = &n
	listener := c.listener
	c.mu.Unlock()

	c.logger.Info("notification", "title", title, "message", message)
	if listener != nil {
		listener(n)
	}
}

// Current returns the visible banner, clearing it once expired.
func (c *Center) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return Notification{}, false
	}
	if c.current.Expired(time.Now()) {
		c.current = nil
		return Notification{}, false
	}
	return *c.current, true
}

// Dismiss clears the visible banner early.
func (c *Center) Dismiss() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}
