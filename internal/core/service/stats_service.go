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

// StatsState is the dashboard counters projection.
type StatsState struct {
	Stats   *domain.SystemStats
	Loading bool
	Err     error
}

// StatsService keeps the dashboard aggregate counters current. It follows
// the same fetch-generation discipline as the list controller, on the single
// stats cache key, and is poked by the mutation path after every write.
type StatsService struct {
	mu      sync.Mutex
	gateway ports.StatsGateway
	cache   *cache.Cache
	session ports.SessionProvider
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	fetchSeq uint64
	state    StatsState
	nextID   int
	subs     []statsSubscriber

	cancelSession func()
}

type statsSubscriber struct {
	id int
	fn func(StatsState)
}

func NewStatsService(gw ports.StatsGateway, c *cache.Cache, sess ports.SessionProvider, log zerolog.Logger) *StatsService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &StatsService{
		gateway: gw,
		cache:   c,
		session: sess,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
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

func (s *StatsService) Close() {
	s.cancelSession()
	s.cancel()
}

func (s *StatsService) State() StatsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to observe every state change, in subscription order.
func (s *StatsService) Subscribe(fn func(StatsState)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, statsSubscriber{id: id, fn: fn})
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

// Refetch re-reads the counters, bypassing cache freshness. Satisfies
// Refresher so the mutation path can register this controller.
func (s *StatsService) Refetch() {
	s.mu.Lock()
	s.startFetchLocked(true)
	s.notifyUnlock()
}

func (s *StatsService) onSessionChange(active bool) {
	if !active {
		s.mu.Lock()
		s.fetchSeq++
		s.state = StatsState{}
		s.notifyUnlock()
		return
	}
	s.mu.Lock()
	s.startFetchLocked(false)
	s.notifyUnlock()
}

func (s *StatsService) startFetchLocked(force bool) {
	s.fetchSeq++
	s.state.Loading = true
	s.state.Err = nil
	go s.fetch(s.fetchSeq, force)
}

func (s *StatsService) fetch(seq uint64, force bool) {
	if _, ok := s.session.Token(); !ok {
		s.apply(seq, nil, nil)
		return
	}

	if !force {
		if stats, fresh, ok := s.cache.GetStats(s.ctx); ok && fresh {
			s.apply(seq, stats, nil)
			return
		}
	}

	stats, err := s.gateway.SystemStats(s.ctx)
	if err != nil && s.ctx.Err() == nil {
		metrics.QueriesTotal.WithLabelValues(cache.ResourceStats, "retried").Inc()
		s.log.Warn().Err(err).Msg("stats query failed, retrying once")
		stats, err = s.gateway.SystemStats(s.ctx)
	}
	if err != nil {
		s.apply(seq, nil, err)
		return
	}

	s.cache.SetStats(s.ctx, stats)
	s.apply(seq, stats, nil)
}

func (s *StatsService) apply(seq uint64, stats *domain.SystemStats, err error) {
	s.mu.Lock()
	if seq != s.fetchSeq {
		s.mu.Unlock()
		metrics.StaleResponsesTotal.Inc()
		return
	}
	s.state = StatsState{Stats: stats, Err: err}
	if err != nil {
		s.log.Error().Err(err).Msg("stats query failed")
	}
	s.notifyUnlock()
}

func (s *StatsService) notifyUnlock() {
	state := s.state
	subs := make([]statsSubscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(state)
	}
}
