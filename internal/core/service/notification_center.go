package service

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fleetgrid/tms-console/internal/core/domain"
	"github.com/fleetgrid/tms-console/internal/events"
)

// NotificationCenter consumes the bus's notification topic and keeps the
// durable in-session list behind the bell icon, newest first. The list is
// append-only: entries are never removed, and the only mutation is marking
// everything read.
type NotificationCenter struct {
	mu        sync.Mutex
	items     []domain.Notification
	nextID    int
	subs      []centerSubscriber
	cancelBus func()
	now       func() time.Time
}

type centerSubscriber struct {
	id int
	fn func()
}

func NewNotificationCenter(bus *events.Bus) *NotificationCenter {
	c := &NotificationCenter{now: time.Now}
	c.cancelBus = bus.SubscribeNotification(c.receive)
	return c
}

// Close detaches from the bus. The accumulated list stays readable.
func (c *NotificationCenter) Close() {
	c.cancelBus()
}

// Notifications returns the list, newest first.
func (c *NotificationCenter) Notifications() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// UnreadCount returns the number of unread entries.
func (c *NotificationCenter) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, item := range c.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkAllRead marks every entry read.
func (c *NotificationCenter) MarkAllRead() {
	c.mu.Lock()
	for i := range c.items {
		c.items[i].Read = true
	}
	c.notifyUnlock()
}

// Subscribe registers fn to be called whenever the list changes.
func (c *NotificationCenter) Subscribe(fn func()) (cancel func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, centerSubscriber{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subs {
			if sub.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// receive appends an incoming event, assigning an id and timestamp when the
// producer left them blank. New entries arrive unread.
func (c *NotificationCenter) receive(n domain.Notification) {
	if n.ID == "" {
		n.ID = ulid.Make().String()
	}
	if n.Time.IsZero() {
		n.Time = c.now()
	}
	n.Read = false

	c.mu.Lock()
	c.items = append([]domain.Notification{n}, c.items...)
	c.notifyUnlock()
}

func (c *NotificationCenter) notifyUnlock() {
	subs := make([]centerSubscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}
