package service

import (
	"testing"
	"time"

	"github.com/fleetgrid/tms-console/internal/core/domain"
	"github.com/fleetgrid/tms-console/internal/events"
)

func TestNotificationCenter_NewestFirst(t *testing.T) {
	bus := events.NewBus(discardLogger)
	c := NewNotificationCenter(bus)
	defer c.Close()

	bus.PublishNotification(domain.Notification{ID: "n1", Title: "Shipment Created", Type: domain.NotifyShipment})
	bus.PublishNotification(domain.Notification{ID: "n2", Title: "Carrier Assigned", Type: domain.NotifyCarrier})
	bus.PublishNotification(domain.Notification{ID: "n3", Title: "Delay Reported", Type: domain.NotifyAlert})

	items := c.Notifications()
	if len(items) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(items))
	}
	for i, want := range []string{"n3", "n2", "n1"} {
		if items[i].ID != want {
			t.Errorf("position %d: want %s, got %s", i, want, items[i].ID)
		}
	}
}

func TestNotificationCenter_FillsBlankIDAndTimestamp(t *testing.T) {
	bus := events.NewBus(discardLogger)
	c := NewNotificationCenter(bus)
	defer c.Close()

	before := time.Now()
	bus.PublishNotification(domain.Notification{Title: "Anonymous Event", Type: domain.NotifySuccess})

	items := c.Notifications()
	if len(items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(items))
	}
	if items[0].ID == "" {
		t.Error("expected a generated id")
	}
	if items[0].Time.Before(before.Add(-time.Second)) || items[0].Time.IsZero() {
		t.Errorf("expected a fresh timestamp, got %v", items[0].Time)
	}
}

func TestNotificationCenter_ArrivalsAreUnreadEvenIfMarked(t *testing.T) {
	bus := events.NewBus(discardLogger)
	c := NewNotificationCenter(bus)
	defer c.Close()

	// A producer cannot pre-mark its event as read.
	bus.PublishNotification(domain.Notification{ID: "n1", Title: "Sneaky", Read: true})

	if got := c.UnreadCount(); got != 1 {
		t.Errorf("expected 1 unread, got %d", got)
	}
}

func TestNotificationCenter_MarkAllRead(t *testing.T) {
	bus := events.NewBus(discardLogger)
	c := NewNotificationCenter(bus)
	defer c.Close()

	changes := 0
	c.Subscribe(func() { changes++ })

	bus.PublishNotification(domain.Notification{ID: "n1", Title: "One"})
	bus.PublishNotification(domain.Notification{ID: "n2", Title: "Two"})
	if got := c.UnreadCount(); got != 2 {
		t.Fatalf("expected 2 unread, got %d", got)
	}

	c.MarkAllRead()
	if got := c.UnreadCount(); got != 0 {
		t.Errorf("expected 0 unread after MarkAllRead, got %d", got)
	}
	if len(c.Notifications()) != 2 {
		t.Error("MarkAllRead must not drop entries")
	}
	if changes != 3 {
		t.Errorf("expected 3 change callbacks (2 arrivals + mark), got %d", changes)
	}
}

func TestNotificationCenter_DetachesOnClose(t *testing.T) {
	bus := events.NewBus(discardLogger)
	c := NewNotificationCenter(bus)

	bus.PublishNotification(domain.Notification{ID: "n1", Title: "Kept"})
	c.Close()
	bus.PublishNotification(domain.Notification{ID: "n2", Title: "Dropped"})

	items := c.Notifications()
	if len(items) != 1 || items[0].ID != "n1" {
		t.Errorf("expected only the pre-close entry, got %+v", items)
	}
}
