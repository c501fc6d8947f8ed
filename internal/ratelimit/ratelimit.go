// Package ratelimit counts events per key over a sliding time window.
package ratelimit

import (
	"sync"
	"time"
)

// Window allows at most max events per key within a sliding window. A
// background goroutine forgets idle keys until Stop is called.
type Window struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	now    func() time.Time
	done   chan struct{}
	once   sync.Once
}

// New creates a Window limiter allowing max events per key within window.
func New(max int, window time.Duration) *Window {
	return newWindow(max, window, time.Now)
}

func newWindow(max int, window time.Duration, now func() time.Time) *Window {
	w := &Window{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		now:    now,
		done:   make(chan struct{}),
	}
	go w.cleanup()
	return w
}

// Check reports whether key is under the limit without recording an event.
// Pair it with Record when only some events count, e.g. failed sign-ins.
func (w *Window) Check(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.prune(key)) < w.max
}

// Record counts one event for key.
func (w *Window) Record(key string) {
	w.mu.Lock()
	w.hits[key] = append(w.hits[key], w.now())
	w.mu.Unlock()
}

// Allow checks the limit and records the event in one step.
func (w *Window) Allow(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.prune(key)
	if len(kept) >= w.max {
		return false
	}
	w.hits[key] = append(kept, w.now())
	return true
}

// Stop ends the background cleanup.
func (w *Window) Stop() {
	w.once.Do(func() { close(w.done) })
}

// prune drops expired events of key. w.mu must be held.
func (w *Window) prune(key string) []time.Time {
	cutoff := w.now().Add(-w.window)
	hits := w.hits[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(w.hits, key)
		return nil
	}
	w.hits[key] = kept
	return kept
}

func (w *Window) cleanup() {
	ticker := time.NewTicker(w.window)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
		}
		w.mu.Lock()
		for key := range w.hits {
			w.prune(key)
		}
		w.mu.Unlock()
	}
}
