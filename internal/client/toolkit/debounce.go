package toolkit

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is the quiet window used when none is configured.
const DefaultDebounceDelay = 300 * time.Millisecond

// Debouncer coalesces bursts of calls: fn runs once with the last value after
// delay has elapsed without a new Call.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	value   T
}

// NewDebouncer returns a Debouncer; a non-positive delay means DefaultDebounceDelay.
func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Call schedules fn(v), cancelling any call still waiting.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	d.pending = true
	d.value = v
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// a stopped timer may still fire; the generation check drops it
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()

	if d.fn != nil {
		d.fn(v)
	}
}

// take clears the pending value. Callers hold d.mu.
func (d *Debouncer[T]) take() T {
	var zero T
	v := d.value
	d.value = zero
	d.pending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v
}

// Cancel drops the pending call, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending {
		d.take()
	}
}

// Flush runs the pending call immediately. It reports whether one ran.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	v := d.take()
	d.mu.Unlock()

	if d.fn != nil {
		d.fn(v)
	}
	return true
}

func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
