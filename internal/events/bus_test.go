package events

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/fleetgrid/tms-console/internal/core/domain"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var order []string
	bus.Subscribe(TopicToast, func(any) { order = append(order, "first") })
	bus.Subscribe(TopicToast, func(any) { order = append(order, "second") })
	bus.Subscribe(TopicToast, func(any) { order = append(order, "third") })

	bus.Publish(TopicToast, domain.Toast{Message: "hi", Type: domain.ToastInfo})

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %d deliveries, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("delivery %d: expected %q, got %q", i, want[i], order[i])
		}
	}
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	calls := 0
	cancel := bus.Subscribe(TopicNotification, func(any) { calls++ })

	bus.Publish(TopicNotification, domain.Notification{Title: "one"})
	cancel()
	bus.Publish(TopicNotification, domain.Notification{Title: "two"})
	cancel() // idempotent

	if calls != 1 {
		t.Errorf("expected 1 delivery, got %d", calls)
	}
}

func TestBus_NoReplayForLateSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	bus.Publish(TopicToast, domain.Toast{Message: "early", Type: domain.ToastInfo})

	calls := 0
	bus.Subscribe(TopicToast, func(any) { calls++ })

	if calls != 0 {
		t.Errorf("late subscriber must not receive past events, got %d deliveries", calls)
	}
}

func TestBus_TopicsAreIsolated(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	toasts := 0
	notifications := 0
	bus.SubscribeToast(func(domain.Toast) { toasts++ })
	bus.SubscribeNotification(func(domain.Notification) { notifications++ })

	bus.PublishToast(domain.Toast{Message: "t", Type: domain.ToastSuccess})
	bus.PublishNotification(domain.Notification{Title: "n"})

	if toasts != 1 || notifications != 1 {
		t.Errorf("expected 1 toast and 1 notification, got %d and %d", toasts, notifications)
	}
}

func TestBus_TypedSubscribersIgnoreWrongPayload(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	calls := 0
	bus.SubscribeToast(func(domain.Toast) { calls++ })

	// A raw publish with the wrong payload type must not reach typed handlers.
	bus.Publish(TopicToast, "not a toast")

	if calls != 0 {
		t.Errorf("expected 0 deliveries for mistyped payload, got %d", calls)
	}
}
