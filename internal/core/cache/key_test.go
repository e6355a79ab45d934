package cache

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fleetgrid/tms-console/internal/core/domain"
)

func TestKey_CanonicalIsValueBased(t *testing.T) {
	flagged := true
	build := func() Key {
		// Rebuilt from scratch each call, the way a view layer reconstructs
		// its filter on every interaction.
		return Key{
			Resource: ResourceShipments,
			Page:     2,
			Limit:    5,
			Filter: domain.ShipmentFilter{
				Status:      domain.StatusPending,
				CarrierName: "Swift Transportation",
				IsFlagged:   &flagged,
			},
			Sort:   domain.SortConfig{Field: "created_at", Order: domain.SortDesc},
			Search: "TRK-2026",
		}
	}

	a, b := build(), build()
	if a.Canonical() != b.Canonical() {
		t.Errorf("structurally equal keys canonicalised differently:\n%s\n%s", a.Canonical(), b.Canonical())
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("keys unexpectedly differ structurally:\n%s", diff)
	}
}

func TestKey_CanonicalDistinguishesDimensions(t *testing.T) {
	base := Key{Resource: ResourceShipments, Page: 1, Limit: 5}

	variants := []Key{
		{Resource: ResourceShipments, Page: 2, Limit: 5},
		{Resource: ResourceShipments, Page: 1, Limit: 10},
		{Resource: ResourceShipments, Page: 1, Limit: 5, Search: "acme"},
		{Resource: ResourceShipments, Page: 1, Limit: 5, Filter: domain.ShipmentFilter{Status: domain.StatusDelayed}},
		{Resource: ResourceShipments, Page: 1, Limit: 5, Sort: domain.SortConfig{Field: "rate_amount", Order: domain.SortAsc}},
	}

	seen := map[string]bool{base.Canonical(): true}
	for _, v := range variants {
		c := v.Canonical()
		if seen[c] {
			t.Errorf("key %+v collided with a previous canonical form %q", v, c)
		}
		seen[c] = true
	}
}

func TestKey_CanonicalOmitsUnsetDimensions(t *testing.T) {
	// Absence of a filter field means "no constraint", so it must not appear
	// in the canonical form at all.
	k := Key{Resource: ResourceShipments, Page: 1, Limit: 5}
	if got, want := k.Canonical(), "shipments|page=1|limit=5"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestKey_CanonicalEscapesSeparator(t *testing.T) {
	a := Key{Resource: ResourceShipments, Page: 1, Limit: 5, Search: "x|limit=99"}
	b := Key{Resource: ResourceShipments, Page: 1, Limit: 99, Search: "x"}
	if a.Canonical() == b.Canonical() {
		t.Errorf("separator in a value must not forge another key: %q", a.Canonical())
	}
}

func TestStatsKey(t *testing.T) {
	if got := StatsKey().Canonical(); got != ResourceStats {
		t.Errorf("expected %q, got %q", ResourceStats, got)
	}
}
