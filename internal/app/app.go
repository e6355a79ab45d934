// Package app wires the console core together: config, cache store, gateway,
// event bus, session, and the controllers the rendering layer talks to.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fleetgrid/tms-console/internal/core/cache"
	"github.com/fleetgrid/tms-console/internal/core/service"
	"github.com/fleetgrid/tms-console/internal/events"
	"github.com/fleetgrid/tms-console/internal/infrastructure/config"
	"github.com/fleetgrid/tms-console/internal/infrastructure/gateway"
	"github.com/fleetgrid/tms-console/internal/infrastructure/rediscache"
	"github.com/fleetgrid/tms-console/internal/session"
)

// App owns every component of the console core for one user session.
type App struct {
	Config  *config.Config
	Bus     *events.Bus
	Session *session.Session
	Gateway *gateway.Client
	Cache   *cache.Cache

	Shipments     *service.ShipmentListService
	Mutations     *service.ShipmentMutationService
	Stats         *service.StatsService
	Search        *service.SearchDebouncer
	Toasts        *service.ToastPresenter
	Notifications *service.NotificationCenter

	log zerolog.Logger
}

// New builds the fully wired core. The Redis-backed cache is used when the
// config names a Redis address; the in-process cache otherwise.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	var store cache.Store
	if cfg.Redis.Addr != "" {
		client, err := rediscache.Connect(ctx, rediscache.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		store = rediscache.NewStore(client, cfg.Console.CacheMaxAge)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using shared redis query cache")
	} else {
		store = cache.NewMemoryStore(cfg.Console.CacheMaxAge)
	}

	a := &App{
		Config:  cfg,
		Bus:     events.NewBus(log),
		Session: session.New(log),
		Cache:   cache.New(store, log),
		log:     log,
	}
	a.Gateway = gateway.New(cfg.Gateway.Endpoint, cfg.Gateway.Timeout, a.Session, log)

	a.Shipments = service.NewShipmentListService(a.Gateway, a.Cache, a.Session, cfg.Console.PageLimit, log)
	a.Stats = service.NewStatsService(a.Gateway, a.Cache, a.Session, log)
	a.Mutations = service.NewShipmentMutationService(a.Gateway, a.Cache, a.Bus, log)
	a.Mutations.RegisterRefresher(a.Shipments)
	a.Mutations.RegisterRefresher(a.Stats)

	a.Search = service.NewSearchDebouncer(cfg.Console.DebounceWindow, a.Shipments.SetSearch)
	a.Toasts = service.NewToastPresenter(a.Bus, cfg.Console.ToastDuration)
	a.Notifications = service.NewNotificationCenter(a.Bus)

	return a, nil
}

// SignIn exchanges credentials at the endpoint and installs the returned
// bearer; the controllers pick the new session up through their
// subscriptions and load their first data.
func (a *App) SignIn(ctx context.Context, email, password string) error {
	result, err := a.Gateway.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.Session.SetToken(result.Token, result.User)
	return nil
}

// SignOut ends the session; the controllers clear their projections.
func (a *App) SignOut() {
	a.Session.Clear()
}

// Close tears the core down.
func (a *App) Close() {
	a.Search.Stop()
	a.Toasts.Close()
	a.Notifications.Close()
	a.Shipments.Close()
	a.Stats.Close()
}
