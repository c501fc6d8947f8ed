package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestWindow(t *testing.T, max int, window time.Duration) (*Window, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	w := newWindow(max, window, clock.now)
	t.Cleanup(w.Stop)
	return w, clock
}

func TestAllowBlocksAfterMax(t *testing.T) {
	w, _ := newTestWindow(t, 2, time.Minute)

	if !w.Allow("u1") || !w.Allow("u1") {
		t.Fatal("expected first two events to be allowed")
	}
	if w.Allow("u1") {
		t.Fatal("expected third event to be blocked")
	}
	if !w.Allow("u2") {
		t.Fatal("expected other key to be allowed independently")
	}
}

func TestAllowResetsAfterWindow(t *testing.T) {
	w, clock := newTestWindow(t, 1, time.Minute)

	if !w.Allow("203.0.113.20") {
		t.Fatal("expected first event to be allowed")
	}
	if w.Allow("203.0.113.20") {
		t.Fatal("expected second event to be blocked")
	}
	clock.advance(61 * time.Second)
	if !w.Allow("203.0.113.20") {
		t.Fatal("expected event after window to be allowed")
	}
}

func TestCheckDoesNotRecord(t *testing.T) {
	w, _ := newTestWindow(t, 2, time.Minute)
	ip := "203.0.113.10"

	for i := 0; i < 5; i++ {
		if !w.Check(ip) {
			t.Fatalf("check %d blocked without any recorded events", i)
		}
	}
	w.Record(ip)
	if !w.Check(ip) {
		t.Fatal("expected check after one event to pass")
	}
	w.Record(ip)
	if w.Check(ip) {
		t.Fatal("expected check after two events to be blocked")
	}
}

func TestPruneForgetsIdleKeys(t *testing.T) {
	w, clock := newTestWindow(t, 3, time.Minute)
	w.Record("a")
	clock.advance(2 * time.Minute)

	w.Check("a")
	w.mu.Lock()
	n := len(w.hits)
	w.mu.Unlock()
	if n != 0 {
		t.Errorf("idle keys kept: %d", n)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w := New(1, time.Minute)
	w.Stop()
	w.Stop()
}
