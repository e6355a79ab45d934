package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/fleetgrid/tms-console/internal/core/cache"
	"github.com/fleetgrid/tms-console/internal/core/domain"
	"github.com/fleetgrid/tms-console/internal/core/ports"
	"github.com/fleetgrid/tms-console/internal/events"
	"github.com/fleetgrid/tms-console/internal/metrics"
)

// MutationKind names a write operation for in-flight accounting.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
	MutationFlag   MutationKind = "flag"
	MutationUnflag MutationKind = "unflag"
)

// Refresher is an active query controller that should re-fetch after its
// cached data has been invalidated by a write.
type Refresher interface {
	Refetch()
}

// ShipmentMutationService wraps every shipment write. Each settled mutation
// produces exactly one piece of user feedback: a success toast (plus, for
// creates, a durable notification) or an error toast. Success invalidates
// the shipment and stats caches and pokes the registered active controllers;
// failure leaves every piece of local state untouched so the operator can
// retry without re-entering anything.
type ShipmentMutationService struct {
	mu         sync.Mutex
	gateway    ports.ShipmentGateway
	cache      *cache.Cache
	bus        *events.Bus
	log        zerolog.Logger
	now        func() time.Time
	inFlight   map[string]bool
	pending    *domain.Shipment // removal awaiting confirmation
	editorOpen bool
	editing    *domain.Shipment
	refreshers []Refresher
}

func NewShipmentMutationService(
	gw ports.ShipmentGateway,
	c *cache.Cache,
	bus *events.Bus,
	log zerolog.Logger,
) *ShipmentMutationService {
	return &ShipmentMutationService{
		gateway:  gw,
		cache:    c,
		bus:      bus,
		log:      log,
		now:      time.Now,
		inFlight: make(map[string]bool),
	}
}

// RegisterRefresher adds a controller to poke after successful writes.
func (s *ShipmentMutationService) RegisterRefresher(r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshers = append(s.refreshers, r)
}

// Busy reports whether a mutation of the given kind is in flight for the
// record. The view layer uses this to disable the triggering control.
func (s *ShipmentMutationService) Busy(kind MutationKind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[flightKey(kind, id)]
}

// ── Editor drawer state ───────────────────────────────────────────────────────

// OpenCreate opens the drawer for a new record.
func (s *ShipmentMutationService) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editorOpen = true
	s.editing = nil
}

// OpenEdit opens the drawer on an existing record.
func (s *ShipmentMutationService) OpenEdit(sh domain.Shipment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editorOpen = true
	copied := sh
	s.editing = &copied
}

// CloseEditor closes the drawer and clears the editing selection.
func (s *ShipmentMutationService) CloseEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editorOpen = false
	s.editing = nil
}

// EditorOpen reports whether the drawer is open.
func (s *ShipmentMutationService) EditorOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editorOpen
}

// Editing returns the record the drawer is editing, if any.
func (s *ShipmentMutationService) Editing() (domain.Shipment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return domain.Shipment{}, false
	}
	return *s.editing, true
}

// ── Mutations ─────────────────────────────────────────────────────────────────

// Create registers a new shipment. On success the drawer closes, caches are
// invalidated, a success toast fires, and one durable notification records
// the new entry.
func (s *ShipmentMutationService) Create(ctx context.Context, in ports.CreateShipmentInput) (*domain.Shipment, error) {
	if !s.begin(MutationCreate, "") {
		return nil, domain.ErrMutationInFlight
	}
	defer s.end(MutationCreate, "")

	ship, err := s.gateway.CreateShipment(ctx, in)
	if err != nil {
		s.settleError(MutationCreate, "FAILED TO PROCESS SHIPMENT", err)
		return nil, err
	}

	s.settleSuccess(ctx, MutationCreate, "SHIPMENT SUCCESSFULLY REGISTERED", true)
	s.bus.PublishNotification(domain.Notification{
		ID:    ulid.Make().String(),
		Title: "Shipment Created",
		Desc:  fmt.Sprintf("New record %s has been added to the registry.", ship.Label()),
		Type:  domain.NotifyShipment,
		Time:  s.now(),
	})
	s.log.Info().Str("shipment_id", ship.ID).Str("tracking_number", ship.TrackingNumber).Msg("shipment created")
	return ship, nil
}

// Update replaces an existing shipment record.
func (s *ShipmentMutationService) Update(ctx context.Context, id string, in ports.UpdateShipmentInput) (*domain.Shipment, error) {
	if !s.begin(MutationUpdate, id) {
		return nil, domain.ErrMutationInFlight
	}
	defer s.end(MutationUpdate, id)

	ship, err := s.gateway.UpdateShipment(ctx, id, in)
	if err != nil {
		s.settleError(MutationUpdate, "FAILED TO UPDATE SHIPMENT RECORD", err)
		return nil, err
	}

	s.settleSuccess(ctx, MutationUpdate, "SHIPMENT RECORD UPDATED", true)
	s.log.Info().Str("shipment_id", id).Msg("shipment updated")
	return ship, nil
}

// RequestRemove stages sh for deletion pending explicit confirmation.
func (s *ShipmentMutationService) RequestRemove(sh domain.Shipment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := sh
	s.pending = &copied
}

// PendingRemoval returns the record staged for deletion, if any.
func (s *ShipmentMutationService) PendingRemoval() (domain.Shipment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return domain.Shipment{}, false
	}
	return *s.pending, true
}

// CancelRemove drops the staged deletion.
func (s *ShipmentMutationService) CancelRemove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// ConfirmRemove issues the staged deletion. The pending record is cleared
// atomically with claiming the in-flight slot, so a double confirm can never
// send two delete requests for the same record.
func (s *ShipmentMutationService) ConfirmRemove(ctx context.Context) error {
	s.mu.Lock()
	target := s.pending
	if target == nil {
		s.mu.Unlock()
		return domain.ErrNoPendingRemoval
	}
	key := flightKey(MutationDelete, target.ID)
	if s.inFlight[key] {
		s.mu.Unlock()
		return domain.ErrMutationInFlight
	}
	s.inFlight[key] = true
	s.pending = nil
	s.mu.Unlock()
	defer s.end(MutationDelete, target.ID)

	if err := s.gateway.DeleteShipment(ctx, target.ID); err != nil {
		s.settleError(MutationDelete, "FAILED TO REMOVE RECORD", err)
		return err
	}

	s.settleSuccess(ctx, MutationDelete, "RECORD REMOVED FROM REGISTRY", true)
	s.log.Info().Str("shipment_id", target.ID).Msg("shipment removed")
	return nil
}

// Flag marks a shipment for review.
func (s *ShipmentMutationService) Flag(ctx context.Context, id, reason string) error {
	if !s.begin(MutationFlag, id) {
		return domain.ErrMutationInFlight
	}
	defer s.end(MutationFlag, id)

	if _, err := s.gateway.FlagShipment(ctx, id, reason); err != nil {
		s.settleError(MutationFlag, "FAILED TO UPDATE FLAG", err)
		return err
	}
	s.settleSuccess(ctx, MutationFlag, "SHIPMENT FLAGGED FOR REVIEW", false)
	return nil
}

// Unflag clears a shipment's review flag.
func (s *ShipmentMutationService) Unflag(ctx context.Context, id string) error {
	if !s.begin(MutationUnflag, id) {
		return domain.ErrMutationInFlight
	}
	defer s.end(MutationUnflag, id)

	if _, err := s.gateway.UnflagShipment(ctx, id); err != nil {
		s.settleError(MutationUnflag, "FAILED TO UPDATE FLAG", err)
		return err
	}
	s.settleSuccess(ctx, MutationUnflag, "SHIPMENT FLAG CLEARED", false)
	return nil
}

// ── Settling ──────────────────────────────────────────────────────────────────

// settleSuccess performs the shared success choreography: invalidate, poke
// active controllers, close the drawer when the write came from it, and
// publish the single success toast.
func (s *ShipmentMutationService) settleSuccess(ctx context.Context, kind MutationKind, message string, fromEditor bool) {
	metrics.MutationsTotal.WithLabelValues(string(kind), "ok").Inc()
	s.cache.Invalidate(ctx, cache.ResourceShipments, cache.ResourceStats)

	s.mu.Lock()
	if fromEditor {
		s.editorOpen = false
		s.editing = nil
	}
	refreshers := make([]Refresher, len(s.refreshers))
	copy(refreshers, s.refreshers)
	s.mu.Unlock()

	for _, r := range refreshers {
		r.Refetch()
	}
	s.bus.PublishToast(domain.Toast{Message: message, Type: domain.ToastSuccess})
}

// settleError publishes the single error toast. Drawer, form contents, and
// cache are deliberately left as they were.
func (s *ShipmentMutationService) settleError(kind MutationKind, message string, err error) {
	metrics.MutationsTotal.WithLabelValues(string(kind), "error").Inc()
	s.log.Error().Err(err).Str("kind", string(kind)).Msg("mutation failed")
	s.bus.PublishToast(domain.Toast{Message: message, Type: domain.ToastError})
}

func (s *ShipmentMutationService) begin(kind MutationKind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := flightKey(kind, id)
	if s.inFlight[key] {
		return false
	}
	s.inFlight[key] = true
	return true
}

func (s *ShipmentMutationService) end(kind MutationKind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, flightKey(kind, id))
}

func flightKey(kind MutationKind, id string) string {
	return string(kind) + "|" + id
}
