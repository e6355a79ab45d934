package service

import (
	"sync"
	"time"
)

// SearchDebouncer decouples raw keystrokes from query key changes. The live
// value updates on every OnInput call (it backs the text box); the settled
// value commits only after the window elapses with no further input.
// Trailing-edge: each call inside the window restarts it.
type SearchDebouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	live    string
	settled string
	commit  func(string)
}

// NewSearchDebouncer builds a debouncer that calls commit with the settled
// value. A non-positive window applies the default of 500ms.
func NewSearchDebouncer(window time.Duration, commit func(string)) *SearchDebouncer {
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	return &SearchDebouncer{window: window, commit: commit}
}

// OnInput records a keystroke and (re)starts the settle window.
func (d *SearchDebouncer) OnInput(raw string) {
	d.mu.Lock()
	d.live = raw
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
	d.mu.Unlock()
}

// Live returns the value as typed so far.
func (d *SearchDebouncer) Live() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// Settled returns the last committed value.
func (d *SearchDebouncer) Settled() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

// Flush commits the live value immediately, cancelling any pending window.
func (d *SearchDebouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.fire()
}

// Stop cancels any pending commit without firing it.
func (d *SearchDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *SearchDebouncer) fire() {
	d.mu.Lock()
	d.settled = d.live
	value := d.settled
	commit := d.commit
	d.mu.Unlock()

	if commit != nil {
		commit(value)
	}
}
