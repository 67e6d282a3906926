// Package deadline bounds in-flight work with a millisecond budget
// without prescribing what expiry means: callers choose between releasing
// orchestration bookkeeping (cooperative cleanup) and cancelling the
// underlying call outright.
package deadline

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrExpired marks a wait that ran out of budget.
var ErrExpired = errors.New("deadline: budget exhausted")

// Policy selects what happens to a provider call when its budget expires.
type Policy int

const (
	// PolicyCooperative releases only the orchestration-side bookkeeping
	// at expiry. The underlying call keeps running and may still report
	// late through the side-channel hooks.
	PolicyCooperative Policy = iota

	// PolicyCancel triggers the call's cancellation signal at expiry.
	PolicyCancel
)

func (p Policy) String() string {
	switch p {
	case PolicyCooperative:
		return "cooperative"
	case PolicyCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Watch arranges for expire to run once if done has not closed within
// budget. A budget of zero or less means no limit and expire never runs.
// The returned stop function releases the watch early; it is safe to call
// after expiry or more than once.
func Watch(budget time.Duration, done <-chan struct{}, expire func()) (stop func()) {
	if budget <= 0 {
		return func() {}
	}

	stopped := make(chan struct{})
	go func() {
		timer := time.NewTimer(budget)
		defer timer.Stop()

		select {
		case <-done:
		case <-stopped:
		case <-timer.C:
			expire()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopped) })
	}
}

// Await blocks until done closes, ctx ends, or budget expires, in that
// priority. It returns nil on completion, ctx.Err() on context end, and
// ErrExpired on budget expiry. A budget of zero or less waits without a
// deadline.
func Await(ctx context.Context, budget time.Duration, done <-chan struct{}) error {
	if budget <= 0 {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		// completion and expiry can race; completion wins
		select {
		case <-done:
			return nil
		default:
		}
		return ErrExpired
	}
}
