package service

import (
	"sync"
	"testing"
	"time"

	"github.com/fleetgrid/tms-console/internal/core/domain"
	"github.com/fleetgrid/tms-console/internal/events"
)

func TestToastPresenter_LastWriteWins(t *testing.T) {
	bus := events.NewBus(discardLogger)
	p := NewToastPresenter(bus, time.Hour)
	defer p.Close()

	bus.PublishToast(domain.Toast{Message: "FIRST", Type: domain.ToastSuccess})
	bus.PublishToast(domain.Toast{Message: "SECOND", Type: domain.ToastError})

	cur, ok := p.Current()
	if !ok {
		t.Fatal("expected a visible toast")
	}
	if cur.Message != "SECOND" || cur.Type != domain.ToastError {
		t.Errorf("expected the newest toast to replace the old one, got %+v", cur)
	}
}

func TestToastPresenter_DismissHidesImmediately(t *testing.T) {
	bus := events.NewBus(discardLogger)
	p := NewToastPresenter(bus, time.Hour)
	defer p.Close()

	var mu sync.Mutex
	var seen []*domain.Toast
	p.Subscribe(func(toast *domain.Toast) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, toast)
	})

	bus.PublishToast(domain.Toast{Message: "HELLO", Type: domain.ToastInfo})
	p.Dismiss()

	if _, ok := p.Current(); ok {
		t.Error("expected no visible toast after Dismiss")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] == nil || seen[1] != nil {
		t.Errorf("expected show then nil-dismissal, got %v", seen)
	}

	// Dismissing again is a no-op and must not notify.
	p.Dismiss()
	if len(seen) != 2 {
		t.Errorf("repeat dismiss must not notify, got %d events", len(seen))
	}
}

func TestToastPresenter_AutoDismissesAfterDuration(t *testing.T) {
	bus := events.NewBus(discardLogger)
	p := NewToastPresenter(bus, 20*time.Millisecond)
	defer p.Close()

	bus.PublishToast(domain.Toast{Message: "BRIEF", Type: domain.ToastSuccess})
	if _, ok := p.Current(); !ok {
		t.Fatal("expected the toast visible right after publish")
	}

	waitFor(t, "auto dismissal", func() bool {
		_, ok := p.Current()
		return !ok
	})
}

func TestToastPresenter_ReplacementRestartsTimer(t *testing.T) {
	bus := events.NewBus(discardLogger)
	p := NewToastPresenter(bus, 50*time.Millisecond)
	defer p.Close()

	bus.PublishToast(domain.Toast{Message: "FIRST", Type: domain.ToastSuccess})
	time.Sleep(30 * time.Millisecond)
	bus.PublishToast(domain.Toast{Message: "SECOND", Type: domain.ToastSuccess})

	// The first toast's deadline has passed; the second is still inside its
	// own freshly started window.
	time.Sleep(30 * time.Millisecond)
	if cur, ok := p.Current(); !ok || cur.Message != "SECOND" {
		t.Errorf("replacement must restart the dismiss window, got %+v ok=%v", cur, ok)
	}

	waitFor(t, "eventual dismissal", func() bool {
		_, ok := p.Current()
		return !ok
	})
}
