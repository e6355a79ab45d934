package service

import (
	"sync"
	"time"

	"github.com/fleetgrid/tms-console/internal/core/domain"
	"github.com/fleetgrid/tms-console/internal/events"
)

// ToastPresenter consumes the bus's toast topic and holds the single visible
// toast. A new toast replaces the current one (last-write-wins, no queue)
// and the display auto-dismisses after the configured duration.
type ToastPresenter struct {
	mu        sync.Mutex
	current   *domain.Toast
	duration  time.Duration
	timer     *time.Timer
	nextID    int
	subs      []toastSubscriber
	cancelBus func()
}

type toastSubscriber struct {
	id int
	// fn receives the visible toast, or nil on dismissal.
	fn func(*domain.Toast)
}

// NewToastPresenter attaches to bus. A non-positive duration applies the
// default of four seconds.
func NewToastPresenter(bus *events.Bus, duration time.Duration) *ToastPresenter {
	if duration <= 0 {
		duration = 4 * time.Second
	}
	p := &ToastPresenter{duration: duration}
	p.cancelBus = bus.SubscribeToast(p.show)
	return p
}

// Close detaches from the bus and stops the dismiss timer.
func (p *ToastPresenter) Close() {
	p.cancelBus()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Current returns the visible toast, if any.
func (p *ToastPresenter) Current() (domain.Toast, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return domain.Toast{}, false
	}
	return *p.current, true
}

// Dismiss hides the visible toast immediately (the user clicked close).
func (p *ToastPresenter) Dismiss() {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return
	}
	p.current = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.notifyUnlock(nil)
}

// Subscribe registers fn to observe toast changes: the new toast on show,
// nil on dismissal. The returned func unsubscribes.
func (p *ToastPresenter) Subscribe(fn func(*domain.Toast)) (cancel func()) {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, toastSubscriber{id: id, fn: fn})
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, sub := range p.subs {
			if sub.id == id {
				p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

func (p *ToastPresenter) show(t domain.Toast) {
	p.mu.Lock()
	copied := t
	p.current = &copied
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.duration, p.autoDismiss)
	p.notifyUnlock(&copied)
}

func (p *ToastPresenter) autoDismiss() {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return
	}
	p.current = nil
	p.timer = nil
	p.notifyUnlock(nil)
}

// notifyUnlock releases the mutex before delivering.
func (p *ToastPresenter) notifyUnlock(t *domain.Toast) {
	subs := make([]toastSubscriber, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, sub := range subs {
		sub.fn(t)
	}
}
