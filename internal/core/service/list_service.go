package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fleetgrid/tms-console/internal/core/cache"
	"github.com/fleetgrid/tms-console/internal/core/domain"
	"github.com/fleetgrid/tms-console/internal/core/ports"
	"github.com/fleetgrid/tms-console/internal/metrics"
)

// ListState is the projection the rendering layer consumes. Items from the
// previous page stay populated while Loading is true so a refetch never
// flashes the view to empty.
type ListState struct {
	Items      []domain.Shipment
	TotalCount int
	Page       int
	TotalPages int
	Loading    bool
	Err        error
}

// ShipmentListService keeps the paginated, filtered, searched shipment list
// in sync with the remote gateway. It owns the current query key: the tuple
// (page, limit, filter, sort, settled search). Every input change issues a
// new fetch generation; a response is applied only if it still belongs to
// the newest generation when it arrives, so out-of-order responses from
// rapid page flips can never overwrite fresher state.
type ShipmentListService struct {
	mu      sync.Mutex
	gateway ports.ShipmentGateway
	cache   *cache.Cache
	session ports.SessionProvider
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	page   int
	limit  int
	filter domain.ShipmentFilter
	sort   domain.SortConfig
	search string

	fetchSeq   uint64
	totalPages int // last known, bounds SetPage before the next result lands

	state  ListState
	nextID int
	subs   []listSubscriber

	cancelSession func()
}

type listSubscriber struct {
	id int
	fn func(ListState)
}

// NewShipmentListService builds the controller. When the session is already
// active the first page is fetched immediately; otherwise the controller
// stays empty until the session provider announces a sign-in.
func NewShipmentListService(
	gw ports.ShipmentGateway,
	c *cache.Cache,
	sess ports.SessionProvider,
	limit int,
	log zerolog.Logger,
) *ShipmentListService {
	if limit <= 0 {
		limit = 5
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &ShipmentListService{
		gateway: gw,
		cache:   c,
		session: sess,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		page:    1,
		limit:   limit,
		sort:    domain.DefaultSort(),
		state:   ListState{Page: 1},
	}
	// The session notifies synchronously; hop to a fresh goroutine so a
	// transition observed mid-operation cannot re-enter our mutex.
	s.cancelSession = sess.Subscribe(func(active bool) {
		go s.onSessionChange(active)
	})
	if _, ok := sess.Token(); ok {
		s.mu.Lock()
		s.startFetchLocked(false)
		s.mu.Unlock()
	}
	return s
}

// Close stops in-flight work and detaches from the session provider.
func (s *ShipmentListService) Close() {
	s.cancelSession()
	s.cancel()
}

// State returns the current projection.
func (s *ShipmentListService) State() ListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Filter returns the active filter.
func (s *ShipmentListService) Filter() domain.ShipmentFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Sort returns the active sort.
func (s *ShipmentListService) Sort() domain.SortConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// Subscribe registers fn to observe every state change, in subscription
// order. The returned func unsubscribes.
func (s *ShipmentListService) Subscribe(fn func(ListState)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, listSubscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// SetFilter replaces the filter wholesale: dimensions absent from f are
// cleared. The page resets to 1 unconditionally, because the previous page
// number is meaningless under a different result set.
func (s *ShipmentListService) SetFilter(f domain.ShipmentFilter) {
	s.mu.Lock()
	s.filter = f
	s.page = 1
	s.startFetchLocked(false)
	s.notifyUnlock()
}

// SetPage moves to page n, clamped to [1, max(1, totalPages)] using the last
// known page count. An out-of-range n is a no-op in the sense that the page
// lands on the nearest bound rather than erroring.
func (s *ShipmentListService) SetPage(n int) {
	s.mu.Lock()
	upper := s.totalPages
	if upper < 1 {
		upper = 1
	}
	if n < 1 {
		n = 1
	}
	if n > upper {
		n = upper
	}
	if n == s.page {
		s.mu.Unlock()
		return
	}
	s.page = n
	s.startFetchLocked(false)
	s.notifyUnlock()
}

// SetSort replaces the single active sort key. By convention reordering does
// not reset the page; only changes that alter the result set's membership do.
func (s *ShipmentListService) SetSort(field string, order domain.SortOrder) {
	s.mu.Lock()
	next := domain.SortConfig{Field: field, Order: order}
	if next == s.sort {
		s.mu.Unlock()
		return
	}
	s.sort = next
	s.startFetchLocked(false)
	s.notifyUnlock()
}

// SetSearch commits a settled search term. A changed term is treated exactly
// like a filter change: the page resets to 1. This is normally fed by the
// SearchDebouncer rather than called per keystroke.
func (s *ShipmentListService) SetSearch(q string) {
	s.mu.Lock()
	if q == s.search {
		s.mu.Unlock()
		return
	}
	s.search = q
	s.page = 1
	s.startFetchLocked(false)
	s.notifyUnlock()
}

// Refetch re-issues the query for the current key, bypassing cache
// freshness. The mutation path calls this after invalidating.
func (s *ShipmentListService) Refetch() {
	s.mu.Lock()
	s.startFetchLocked(true)
	s.notifyUnlock()
}

func (s *ShipmentListService) onSessionChange(active bool) {
	if !active {
		s.mu.Lock()
		s.fetchSeq++ // supersede any in-flight fetch
		s.page = 1
		s.totalPages = 0
		s.state = ListState{Page: 1}
		s.notifyUnlock()
		return
	}
	s.mu.Lock()
	s.startFetchLocked(false)
	s.notifyUnlock()
}

func (s *ShipmentListService) keyLocked() cache.Key {
	return cache.Key{
		Resource: cache.ResourceShipments,
		Page:     s.page,
		Limit:    s.limit,
		Filter:   s.filter,
		Sort:     s.sort,
		Search:   s.search,
	}
}

// startFetchLocked opens a new fetch generation for the current key. Any
// response still in flight from an earlier generation will be discarded on
// arrival.
func (s *ShipmentListService) startFetchLocked(force bool) {
	s.fetchSeq++
	s.state.Loading = true
	s.state.Err = nil
	s.state.Page = s.page
	go s.fetch(s.fetchSeq, s.keyLocked(), force)
}

func (s *ShipmentListService) fetch(seq uint64, k cache.Key, force bool) {
	if _, ok := s.session.Token(); !ok {
		s.applyEmpty(seq)
		return
	}

	if !force {
		if page, fresh, ok := s.cache.GetPage(s.ctx, k); ok {
			if fresh {
				s.applyResult(seq, page, nil, force)
				return
			}
			// Stale entry: show it while the refetch runs.
			s.applyStale(seq, page)
		}
	}

	in := ports.ListShipmentsInput{
		Page:   k.Page,
		Limit:  k.Limit,
		Filter: k.Filter,
		Sort:   k.Sort,
		Search: k.Search,
	}
	page, err := s.gateway.ListShipments(s.ctx, in)
	if err != nil && s.ctx.Err() == nil {
		// One automatic retry per failed query, never more.
		metrics.QueriesTotal.WithLabelValues(cache.ResourceShipments, "retried").Inc()
		s.log.Warn().Err(err).Str("key", k.Canonical()).Msg("list query failed, retrying once")
		page, err = s.gateway.ListShipments(s.ctx, in)
	}
	if err != nil {
		s.applyResult(seq, nil, err, force)
		return
	}

	s.cache.SetPage(s.ctx, k, page)
	s.applyResult(seq, page, nil, force)
}

// applyResult installs a settled fetch outcome, unless a newer generation
// has been issued since: then the response is stale and silently dropped.
// force carries the caller's cache-bypass choice into a follow-up clamp fetch.
func (s *ShipmentListService) applyResult(seq uint64, page *domain.ShipmentPage, err error, force bool) {
	s.mu.Lock()
	if seq != s.fetchSeq {
		s.mu.Unlock()
		metrics.StaleResponsesTotal.Inc()
		s.log.Debug().Uint64("seq", seq).Msg("stale query response discarded")
		return
	}

	if err != nil {
		s.state.Loading = false
		s.state.Err = err
		s.log.Error().Err(err).Msg("shipment list query failed")
		s.notifyUnlock()
		return
	}

	s.totalPages = page.TotalPages

	// Re-clamp: the result may prove the current page out of range (records
	// deleted since the last fetch). Clamp and fetch the nearest valid page.
	upper := page.TotalPages
	if upper < 1 {
		upper = 1
	}
	if s.page > upper {
		s.page = upper
		s.state.TotalCount = page.TotalCount
		s.state.TotalPages = page.TotalPages
		s.state.Page = s.page
		s.startFetchLocked(force)
		s.notifyUnlock()
		return
	}

	s.state = ListState{
		Items:      page.Items,
		TotalCount: page.TotalCount,
		Page:       s.page,
		TotalPages: page.TotalPages,
		Loading:    false,
	}
	s.notifyUnlock()
}

// applyStale shows a stale cache entry while its refetch is in flight.
func (s *ShipmentListService) applyStale(seq uint64, page *domain.ShipmentPage) {
	s.mu.Lock()
	if seq != s.fetchSeq {
		s.mu.Unlock()
		return
	}
	s.state.Items = page.Items
	s.state.TotalCount = page.TotalCount
	s.state.TotalPages = page.TotalPages
	s.notifyUnlock()
}

func (s *ShipmentListService) applyEmpty(seq uint64) {
	s.mu.Lock()
	if seq != s.fetchSeq {
		s.mu.Unlock()
		return
	}
	s.state = ListState{Page: s.page}
	s.notifyUnlock()
}

// notifyUnlock snapshots state and subscribers, releases the mutex, then
// delivers. Handlers run outside the lock so they may call back into the
// controller.
func (s *ShipmentListService) notifyUnlock() {
	state := s.state
	subs := make([]listSubscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(state)
	}
}
