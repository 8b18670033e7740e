package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/draughtworks/brewdeck/internal/event"
	"github.com/draughtworks/brewdeck/pkg/models"
)

func TestLogger_NotNil(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewStore_Usable(t *testing.T) {
	db := NewStore(t)
	if db == nil {
		t.Fatal("expected non-nil store")
	}
	if err := db.DB().PingContext(context.Background()); err != nil {
		t.Fatalf("PingContext: %v", err)
	}
}

func TestMockBus_RecordsEvents(t *testing.T) {
	bus := NewMockBus()

	ev := event.Event{Topic: "test.topic", Source: "test"}
	if err := bus.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	bus.PublishAsync(context.Background(), event.Event{Topic: "test.async", Source: "test"})

	events := bus.Events()
	if len(events) != 2 {
		t.Fatalf("Events len = %d, want 2", len(events))
	}
	if events[0].Topic != "test.topic" {
		t.Errorf("events[0].Topic = %q, want test.topic", events[0].Topic)
	}
	if events[1].Topic != "test.async" {
		t.Errorf("events[1].Topic = %q, want test.async", events[1].Topic)
	}
}

func TestMockBus_Reset(t *testing.T) {
	bus := NewMockBus()
	_ = bus.Publish(context.Background(), event.Event{Topic: "a"})
	bus.Reset()
	if len(bus.Events()) != 0 {
		t.Error("expected empty events after Reset")
	}
}

func TestClock_Advance(t *testing.T) {
	c := NewClock()
	start := c.Now()
	c.Advance(5 * time.Minute)
	if got := c.Now().Sub(start); got != 5*time.Minute {
		t.Errorf("Advance: elapsed = %v, want 5m", got)
	}
}

func TestClock_Set(t *testing.T) {
	c := NewClock()
	target := time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)
	c.Set(target)
	if !c.Now().Equal(target) {
		t.Errorf("Set: got %v, want %v", c.Now(), target)
	}
}

func TestNewBeerRequest_Defaults(t *testing.T) {
	r := NewBeerRequest()
	if errs := r.Validate(); len(errs) != 0 {
		t.Fatalf("default fixture invalid: %v", errs)
	}
	if r.BeerName != "Mango Bobs" {
		t.Errorf("BeerName = %q, want Mango Bobs", r.BeerName)
	}
}

func TestNewBeerRequest_WithOptions(t *testing.T) {
	r := NewBeerRequest(
		WithBeerName("Galaxy Cat"),
		WithBeerStyle(models.StylePaleAle),
		WithPrice(12.50),
	)
	if r.BeerName != "Galaxy Cat" {
		t.Errorf("BeerName = %q, want Galaxy Cat", r.BeerName)
	}
	if r.BeerStyle != string(models.StylePaleAle) {
		t.Errorf("BeerStyle = %q, want PALE_ALE", r.BeerStyle)
	}
	if r.Price != 12.50 {
		t.Errorf("Price = %v, want 12.50", r.Price)
	}
}

func TestNewOrderCommand(t *testing.T) {
	cmd := NewOrderCommand(1, 2)
	if errs := cmd.Validate(); len(errs) != 0 {
		t.Fatalf("default fixture invalid: %v", errs)
	}
	if len(cmd.Items) != 2 {
		t.Fatalf("Items len = %d, want 2", len(cmd.Items))
	}
}
