package cache

import "context"

// Entry is a cached value together with its freshness. A non-fresh entry is
// still returned so controllers can keep stale data on screen while a
// refetch is in flight, instead of flashing to empty.
type Entry struct {
	Data  []byte
	Fresh bool
}

// Store is the pluggable backing for cached query results. The default is
// the in-process MemoryStore; a Redis-backed implementation exists for
// deployments where several console instances share one cache.
//
// Invalidation is by resource, not by individual key: bumping a resource
// marks every entry under it stale without deleting the data.
type Store interface {
	Get(ctx context.Context, k Key) (Entry, bool, error)
	Set(ctx context.Context, k Key, data []byte) error
	Invalidate(ctx context.Context, resource string) error
}
