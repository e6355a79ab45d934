package service

import (
	"context"
	"testing"
	"time"

	"github.com/fleetgrid/tms-console/internal/core/cache"
)

func newStatsFixture(t *testing.T, g *stubGateway) (*StatsService, *cache.Cache, *stubSession) {
	t.Helper()
	c := cache.New(cache.NewMemoryStore(time.Minute), discardLogger)
	sess := newStubSession("token-1")
	svc := NewStatsService(g, c, sess, discardLogger)
	t.Cleanup(svc.Close)
	return svc, c, sess
}

func TestStatsService_InitialLoad(t *testing.T) {
	g := newStubGateway(makeShipments(12, 3))
	svc, _, _ := newStatsFixture(t, g)

	waitFor(t, "stats load", func() bool {
		st := svc.State()
		return !st.Loading && st.Err == nil && st.Stats != nil
	})

	st := svc.State()
	if st.Stats.TotalShipments != 15 || st.Stats.PendingShipments != 12 {
		t.Errorf("unexpected counters: %+v", st.Stats)
	}
}

func TestStatsService_RefetchBypassesFreshCache(t *testing.T) {
	g := newStubGateway(makeShipments(12, 0))
	svc, _, _ := newStatsFixture(t, g)

	waitFor(t, "stats load", func() bool { return svc.State().Stats != nil })

	// The counters change remotely; a poked Refetch must not serve the
	// still-fresh cached value.
	g.setShipments(makeShipments(4, 0))
	svc.Refetch()

	waitFor(t, "updated counters", func() bool {
		st := svc.State()
		return !st.Loading && st.Stats != nil && st.Stats.TotalShipments == 4
	})
}

func TestStatsService_FreshCacheServesSecondController(t *testing.T) {
	g := newStubGateway(makeShipments(12, 0))
	svc, c, sess := newStatsFixture(t, g)

	waitFor(t, "stats load", func() bool { return svc.State().Stats != nil })

	// A second controller over the same cache reads the fresh entry without
	// another gateway round trip.
	if _, fresh, ok := c.GetStats(context.Background()); !ok || !fresh {
		t.Fatalf("expected a fresh cached stats entry (ok=%v fresh=%v)", ok, fresh)
	}

	second := NewStatsService(g, c, sess, discardLogger)
	defer second.Close()
	waitFor(t, "second load", func() bool { return second.State().Stats != nil })

	if got := second.State().Stats.TotalShipments; got != 12 {
		t.Errorf("expected cached counters, got %d", got)
	}
}

func TestStatsService_SessionEndClearsCounters(t *testing.T) {
	g := newStubGateway(makeShipments(12, 0))
	svc, _, sess := newStatsFixture(t, g)

	waitFor(t, "stats load", func() bool { return svc.State().Stats != nil })

	sess.setToken("")
	waitFor(t, "cleared counters", func() bool {
		st := svc.State()
		return st.Stats == nil && !st.Loading
	})
}
