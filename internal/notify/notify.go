// Package notify provides the console's notification surface: an injectable
// Notifier interface for anything that raises user-facing messages, and a
// Center that holds active notifications until they expire or are dismissed.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notification stays visible before auto-dismissal.
const DefaultTTL = 4 * time.Second

// Notification is one user-facing message. Err is optional underlying cause
// context; it is not rendered verbatim.
type Notification struct {
	ID          int
	Title       string
	Description string
	Err         error
	RaisedAt    time.Time
}

// Notifier is the surface handed to view-models and services that raise
// notifications. Delivery is synchronous so tests observe deterministic
// ordering.
type Notifier interface {
	Notify(n Notification)
}

// Clock is the time source used for expiry. testutil.Clock satisfies it.
type Clock interface {
	Now() time.Time
}

// systemClock is the production time source.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Compile-time interface guard.
var _ Notifier = (*Center)(nil)

// Center collects notifications and expires them after a TTL. Rendering
// layers poll Active on their refresh tick.
type Center struct {
	mu     sync.Mutex
	clock  Clock
	ttl    time.Duration
	nextID int
	active []Notification
}

// Option configures a Center.
type Option func(*Center)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(ctr *Center) { ctr.clock = c }
}

// WithTTL overrides the auto-dismiss duration.
func WithTTL(d time.Duration) Option {
	return func(ctr *Center) { ctr.ttl = d }
}

// NewCenter creates a notification center with the default 4s TTL.
func NewCenter(opts ...Option) *Center {
	c := &Center{clock: systemClock{}, ttl: DefaultTTL, nextID: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify records the notification with the current timestamp.
func (c *Center) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n.ID = c.nextID
	c.nextID++
	n.RaisedAt = c.clock.Now()
	c.active = append(c.active, n)
}

// Active returns notifications that have not expired or been dismissed,
// oldest first. Expired entries are pruned as a side effect.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	kept := c.active[:0]
	for _, n := range c.active {
		if now.Sub(n.RaisedAt) < c.ttl {
			kept = append(kept, n)
		}
	}
	c.active = kept

	out := make([]Notification, len(c.active))
	copy(out, c.active)
	return out
}

// Dismiss removes a notification by ID before its TTL elapses.
func (c *Center) Dismiss(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.active[:0]
	for _, n := range c.active {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	c.active = kept
}

// Compile-time interface guard.
var _ Notifier = (*Recorder)(nil)

// Recorder is a Notifier that stores everything it receives, for tests.
type Recorder struct {
	mu   sync.Mutex
	seen []Notification
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify records the notification.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

// Seen returns a copy of all recorded notifications.
func (r *Recorder) Seen() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.seen))
	copy(out, r.seen)
	return out
}

// Reset clears recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = nil
}
