package cache

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/fleetgrid/tms-console/internal/core/domain"
)

// Resource names used as invalidation scopes. A write to the shipment
// registry invalidates every cached page under ResourceShipments, whatever
// filter produced it, because totals shift for all of them.
const (
	ResourceShipments = "shipments"
	ResourceStats     = "stats"
)

// Key identifies one cached query result. Two keys that are structurally
// equal canonicalise to the same string, so equality is value-based even
// though callers rebuild the filter on every interaction.
type Key struct {
	Resource string
	Page     int
	Limit    int
	Filter   domain.ShipmentFilter
	Sort     domain.SortConfig
	Search   string
}

// StatsKey is the single cache key for the aggregate counters query.
func StatsKey() Key {
	return Key{Resource: ResourceStats}
}

// Canonical renders the key as a deterministic string. Fields are emitted in
// a fixed order and zero-valued filter dimensions are omitted, so the result
// is independent of how the key was assembled. Values are query-escaped to
// keep the separator unambiguous.
func (k Key) Canonical() string {
	var b strings.Builder
	b.WriteString(k.Resource)
	if k.Page > 0 {
		b.WriteString("|page=")
		b.WriteString(strconv.Itoa(k.Page))
	}
	if k.Limit > 0 {
		b.WriteString("|limit=")
		b.WriteString(strconv.Itoa(k.Limit))
	}
	writeField(&b, "status", string(k.Filter.Status))
	writeField(&b, "carrier", k.Filter.CarrierName)
	writeField(&b, "priority", string(k.Filter.Priority))
	if k.Filter.IsFlagged != nil {
		writeField(&b, "flagged", strconv.FormatBool(*k.Filter.IsFlagged))
	}
	writeField(&b, "from", k.Filter.DateFrom)
	writeField(&b, "to", k.Filter.DateTo)
	if k.Sort.Field != "" {
		writeField(&b, "sort", k.Sort.Field+":"+string(k.Sort.Order))
	}
	writeField(&b, "q", k.Search)
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString("|")
	b.WriteString(name)
	b.WriteString("=")
	b.WriteString(url.QueryEscape(value))
}
