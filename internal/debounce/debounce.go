// Package debounce delays propagation of rapidly changing values.
package debounce

import (
	"strings"
	"sync"
	"time"
)

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Debouncer.
type Option[T any] func(*Debouncer[T])

// WithAfterFunc replaces the timer source. Tests use it to drive time by hand.
func WithAfterFunc[T any](af AfterFunc) Option[T] {
	return func(d *Debouncer[T]) {
		d.after = af
	}
}

// WithIsEmpty sets the predicate for values that skip the delay.
func WithIsEmpty[T any](fn func(T) bool) Option[T] {
	return func(d *Debouncer[T]) {
		d.isEmpty = fn
	}
}

// Debouncer propagates the latest scheduled value once it has been stable for
// the configured delay. Empty values (nil, whitespace-only strings, or whatever
// WithIsEmpty says) propagate at once so clearing a search box is instant.
//
// onChange runs on the caller's goroutine for empty values and on a timer
// goroutine otherwise. Deliveries never overlap. onChange must not call back
// into the same Debouncer synchronously.
type Debouncer[T any] struct {
	delay    time.Duration
	onChange func(T)
	after    AfterFunc
	isEmpty  func(T) bool

	deliverMu sync.Mutex // serializes onChange calls
	mu        sync.Mutex
	value     T
	timer     Timer
	gen       uint64
	stopped   bool
}

// New creates a Debouncer calling onChange with each settled value.
func New[T any](delay time.Duration, onChange func(T), opts ...Option[T]) *Debouncer[T] {
	d := &Debouncer[T]{
		delay:    delay,
		onChange: onChange,
		after:    realAfterFunc,
		isEmpty:  defaultIsEmpty[T],
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func defaultIsEmpty[T any](v T) bool {
	switch x := any(v).(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case *string:
		return x == nil || strings.TrimSpace(*x) == ""
	}
	return false
}

// Schedule records a new raw value. Any pending value is discarded.
func (d *Debouncer[T]) Schedule(v T) {
	if d.isEmpty(v) {
		d.deliverMu.Lock()
		defer d.deliverMu.Unlock()

		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		d.gen++
		d.stopTimerLocked()
		d.value = v
		d.mu.Unlock()

		d.deliver(v)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gen++
	d.stopTimerLocked()
	gen := d.gen
	d.timer = d.after(d.delay, func() { d.fire(gen, v) })
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.value = v
	d.mu.Unlock()

	d.deliver(v)
}

func (d *Debouncer[T]) deliver(v T) {
	if d.onChange != nil {
		d.onChange(v)
	}
}

func (d *Debouncer[T]) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Cancel drops the pending value, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.stopTimerLocked()
}

// Stop cancels the pending value and ignores all later calls to Schedule.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.stopped = true
	d.stopTimerLocked()
}

// Pending reports whether a value is waiting for its delay to elapse.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Value returns the most recently propagated value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}
