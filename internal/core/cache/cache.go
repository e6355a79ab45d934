// Package cache keys remote query results by the full tuple of parameters
// that produced them and tracks staleness per resource. Only the mutation
// path is allowed to invalidate; reads never self-invalidate.
package cache

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/fleetgrid/tms-console/internal/core/domain"
	"github.com/fleetgrid/tms-console/internal/metrics"
)

// Cache is the typed layer over a Store: it owns JSON encoding of the cached
// shapes and the hit/miss accounting. Store failures degrade to cache misses;
// a broken cache backend must never break a read path that the gateway can
// still serve.
type Cache struct {
	store Store
	log   zerolog.Logger
}

func New(store Store, log zerolog.Logger) *Cache {
	return &Cache{store: store, log: log}
}

// GetPage returns the cached page for k. The second result reports whether
// the entry is fresh; stale entries are still returned for display during a
// refetch. The third result is false on a miss.
func (c *Cache) GetPage(ctx context.Context, k Key) (*domain.ShipmentPage, bool, bool) {
	entry, ok, err := c.lookup(ctx, k)
	if err != nil || !ok {
		return nil, false, false
	}
	var page domain.ShipmentPage
	if err := json.Unmarshal(entry.Data, &page); err != nil {
		c.log.Warn().Err(err).Str("key", k.Canonical()).Msg("cache entry undecodable, treating as miss")
		return nil, false, false
	}
	return &page, entry.Fresh, true
}

// SetPage stores the page under k.
func (c *Cache) SetPage(ctx context.Context, k Key, page *domain.ShipmentPage) {
	c.put(ctx, k, page)
}

// GetStats returns the cached aggregate counters, with the same freshness
// semantics as GetPage.
func (c *Cache) GetStats(ctx context.Context) (*domain.SystemStats, bool, bool) {
	entry, ok, err := c.lookup(ctx, StatsKey())
	if err != nil || !ok {
		return nil, false, false
	}
	var stats domain.SystemStats
	if err := json.Unmarshal(entry.Data, &stats); err != nil {
		c.log.Warn().Err(err).Msg("stats cache entry undecodable, treating as miss")
		return nil, false, false
	}
	return &stats, entry.Fresh, true
}

// SetStats stores the aggregate counters.
func (c *Cache) SetStats(ctx context.Context, stats *domain.SystemStats) {
	c.put(ctx, StatsKey(), stats)
}

// Invalidate marks every entry under each named resource stale.
func (c *Cache) Invalidate(ctx context.Context, resources ...string) {
	for _, r := range resources {
		if err := c.store.Invalidate(ctx, r); err != nil {
			c.log.Warn().Err(err).Str("resource", r).Msg("cache invalidation failed")
			continue
		}
		metrics.CacheInvalidationsTotal.WithLabelValues(r).Inc()
	}
}

func (c *Cache) lookup(ctx context.Context, k Key) (Entry, bool, error) {
	entry, ok, err := c.store.Get(ctx, k)
	if err != nil {
		c.log.Warn().Err(err).Str("key", k.Canonical()).Msg("cache lookup failed, treating as miss")
		metrics.CacheRequestsTotal.WithLabelValues(k.Resource, "error").Inc()
		return Entry{}, false, err
	}
	switch {
	case !ok:
		metrics.CacheRequestsTotal.WithLabelValues(k.Resource, "miss").Inc()
	case entry.Fresh:
		metrics.CacheRequestsTotal.WithLabelValues(k.Resource, "hit").Inc()
	default:
		metrics.CacheRequestsTotal.WithLabelValues(k.Resource, "stale").Inc()
	}
	return entry, ok, nil
}

func (c *Cache) put(ctx context.Context, k Key, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error().Err(err).Str("key", k.Canonical()).Msg("cache encode failed")
		return
	}
	if err := c.store.Set(ctx, k, data); err != nil {
		c.log.Warn().Err(err).Str("key", k.Canonical()).Msg("cache write failed")
	}
}
