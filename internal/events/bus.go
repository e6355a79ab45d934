// Package events carries ephemeral UI events between producers (the mutation
// controller, future background jobs) and consumers (toast renderer,
// notification bell) without threading callbacks through every intermediate
// layer. The bus is an explicitly constructed instance with session lifetime,
// not ambient global state.
package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/fleetgrid/tms-console/internal/core/domain"
	"github.com/fleetgrid/tms-console/internal/metrics"
)

// Topic names a delivery channel on the bus.
type Topic string

const (
	TopicToast        Topic = "toast"
	TopicNotification Topic = "notification"
)

type subscriber struct {
	id int
	fn func(payload any)
}

// Bus is a synchronous publish/subscribe channel. Publish delivers to every
// currently subscribed handler in subscription order before returning; there
// is no buffering or replay, so a handler subscribed after a publish never
// sees that event.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic][]subscriber
	log    zerolog.Logger
}

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{subs: make(map[Topic][]subscriber), log: log}
}

// Subscribe registers fn for topic and returns its unsubscribe func. The
// unsubscribe func is idempotent.
func (b *Bus) Subscribe(topic Topic, fn func(payload any)) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[topic]
		for i, s := range list {
			if s.id == id {
				b.subs[topic] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload to all current subscribers of topic, in
// subscription order. Handlers run on the caller's goroutine; they must not
// block.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	list := make([]subscriber, len(b.subs[topic]))
	copy(list, b.subs[topic])
	b.mu.Unlock()

	b.log.Debug().Str("topic", string(topic)).Int("subscribers", len(list)).Msg("event published")
	for _, s := range list {
		s.fn(payload)
	}
}

// PublishToast publishes a toast event on TopicToast.
func (b *Bus) PublishToast(t domain.Toast) {
	metrics.ToastsPublishedTotal.WithLabelValues(string(t.Type)).Inc()
	b.Publish(TopicToast, t)
}

// PublishNotification publishes a durable notification event on
// TopicNotification.
func (b *Bus) PublishNotification(n domain.Notification) {
	b.Publish(TopicNotification, n)
}

// SubscribeToast registers a handler that only sees toast payloads.
func (b *Bus) SubscribeToast(fn func(domain.Toast)) (cancel func()) {
	return b.Subscribe(TopicToast, func(payload any) {
		if t, ok := payload.(domain.Toast); ok {
			fn(t)
		}
	})
}

// SubscribeNotification registers a handler that only sees notifications.
func (b *Bus) SubscribeNotification(fn func(domain.Notification)) (cancel func()) {
	return b.Subscribe(TopicNotification, func(payload any) {
		if n, ok := payload.(domain.Notification); ok {
			fn(n)
		}
	})
}
