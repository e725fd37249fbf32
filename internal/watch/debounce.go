// Package watch re-runs annotation when watched files change. Bursts of
// change events are coalesced with a trailing-edge debounce.
package watch

import (
	"slices"
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a burst of changes is processed.
const DefaultDelay = 100 * time.Millisecond

// Debouncer collects keys and calls fn once no new key has arrived for the
// configured delay. fn receives each distinct key once, sorted.
type Debouncer struct {
	delay time.Duration
	fn    func(keys []string)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	stopped bool
}

// NewDebouncer creates a debouncer. A non-positive delay uses DefaultDelay.
func NewDebouncer(delay time.Duration, fn func(keys []string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay:   delay,
		fn:      fn,
		pending: make(map[string]struct{}),
	}
}

// Trigger records key and restarts the quiet period.
func (d *Debouncer) Trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending[key] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush runs fn immediately with whatever is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.fire()
}

// Stop cancels any pending call. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	clear(d.pending)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	clear(d.pending)
	d.timer = nil
	d.mu.Unlock()

	slices.Sort(keys)
	d.fn(keys)
}
