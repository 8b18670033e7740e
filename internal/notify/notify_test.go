package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/draughtworks/brewdeck/internal/testutil"
)

func TestCenterNotifyAndActive(t *testing.T) {
	clock := testutil.NewClock()
	c := NewCenter(WithClock(clock))

	c.Notify(Notification{Title: "Saved", Description: "Beer updated"})
	c.Notify(Notification{Title: "Error", Err: errors.New("boom")})

	active := c.Active()
	if len(active) != 2 {
		t.Fatalf("Active len = %d, want 2", len(active))
	}
	if active[0].Title != "Saved" {
		t.Errorf("active[0].Title = %q, want Saved (oldest first)", active[0].Title)
	}
	if active[0].ID == active[1].ID {
		t.Error("notifications should get distinct IDs")
	}
	if !active[0].RaisedAt.Equal(clock.Now()) {
		t.Errorf("RaisedAt = %v, want clock time %v", active[0].RaisedAt, clock.Now())
	}
}

func TestCenterAutoDismissAfterTTL(t *testing.T) {
	clock := testutil.NewClock()
	c := NewCenter(WithClock(clock))

	c.Notify(Notification{Title: "first"})
	clock.Advance(2 * time.Second)
	c.Notify(Notification{Title: "second"})

	// 4s is the default TTL: at +4s the first expires, the second remains.
	clock.Advance(2 * time.Second)
	active := c.Active()
	if len(active) != 1 {
		t.Fatalf("Active len = %d, want 1", len(active))
	}
	if active[0].Title != "second" {
		t.Errorf("surviving Title = %q, want second", active[0].Title)
	}

	clock.Advance(2 * time.Second)
	if got := c.Active(); len(got) != 0 {
		t.Errorf("Active len = %d, want 0 after both TTLs", len(got))
	}
}

func TestCenterCustomTTL(t *testing.T) {
	clock := testutil.NewClock()
	c := NewCenter(WithClock(clock), WithTTL(time.Second))

	c.Notify(Notification{Title: "fleeting"})
	clock.Advance(999 * time.Millisecond)
	if len(c.Active()) != 1 {
		t.Error("notification expired before its TTL")
	}
	clock.Advance(time.Millisecond)
	if len(c.Active()) != 0 {
		t.Error("notification survived past its TTL")
	}
}

func TestCenterDismiss(t *testing.T) {
	c := NewCenter(WithClock(testutil.NewClock()))

	c.Notify(Notification{Title: "keep"})
	c.Notify(Notification{Title: "drop"})

	active := c.Active()
	c.Dismiss(active[1].ID)

	remaining := c.Active()
	if len(remaining) != 1 || remaining[0].Title != "keep" {
		t.Errorf("after Dismiss remaining = %v, want just keep", remaining)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Notify(Notification{Title: "one"})
	r.Notify(Notification{Title: "two"})

	seen := r.Seen()
	if len(seen) != 2 {
		t.Fatalf("Seen len = %d, want 2", len(seen))
	}
	if seen[0].Title != "one" || seen[1].Title != "two" {
		t.Errorf("Seen order = [%q, %q], want [one, two]", seen[0].Title, seen[1].Title)
	}

	r.Reset()
	if len(r.Seen()) != 0 {
		t.Error("Seen non-empty after Reset")
	}
}
