package ports

import (
	"context"

	"github.com/fleetgrid/tms-console/internal/core/domain"
)

// ListShipmentsInput carries every parameter of a paginated list query.
// Page is 1-based. Search holds the settled (debounced) search term.
type ListShipmentsInput struct {
	Page   int
	Limit  int
	Filter domain.ShipmentFilter
	Sort   domain.SortConfig
	Search string
}

// CreateShipmentInput is the payload for registering a new shipment.
type CreateShipmentInput struct {
	ShipperName    string `json:"shipper_name" validate:"required"`
	ShipperEmail   string `json:"shipper_email,omitempty" validate:"omitempty,email"`
	ShipperPhone   string `json:"shipper_phone,omitempty"`
	CarrierName    string `json:"carrier_name" validate:"required"`
	CarrierContact string `json:"carrier_contact,omitempty"`

	PickupLocation    string `json:"pickup_location" validate:"required"`
	PickupDate        string `json:"pickup_date" validate:"required"`
	DeliveryLocation  string `json:"delivery_location" validate:"required"`
	DeliveryDate      string `json:"delivery_date,omitempty"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`

	WeightKg   float64 `json:"weight_kg,omitempty" validate:"omitempty,gt=0"`
	Dimensions string  `json:"dimensions,omitempty"`
	CargoType  string  `json:"cargo_type,omitempty"`

	RateAmount float64 `json:"rate_amount" validate:"gte=0"`
	Currency   string  `json:"currency" validate:"required,len=3"`

	Status   domain.ShipmentStatus `json:"status" validate:"required,oneof=pending in_transit delivered cancelled delayed"`
	Priority domain.Priority       `json:"priority" validate:"required,oneof=low normal high urgent"`
	Notes    string                `json:"notes,omitempty"`
}

// UpdateShipmentInput mirrors CreateShipmentInput for full-record updates.
type UpdateShipmentInput = CreateShipmentInput

// ShipmentGateway issues typed shipment operations against the remote
// GraphQL endpoint. Implementations attach the session bearer when present.
type ShipmentGateway interface {
	ListShipments(ctx context.Context, in ListShipmentsInput) (*domain.ShipmentPage, error)
	GetShipment(ctx context.Context, id string) (*domain.Shipment, error)
	CreateShipment(ctx context.Context, in CreateShipmentInput) (*domain.Shipment, error)
	UpdateShipment(ctx context.Context, id string, in UpdateShipmentInput) (*domain.Shipment, error)
	DeleteShipment(ctx context.Context, id string) error
	FlagShipment(ctx context.Context, id, reason string) (*domain.Shipment, error)
	UnflagShipment(ctx context.Context, id string) (*domain.Shipment, error)
}

// StatsGateway reads the dashboard aggregate counters.
type StatsGateway interface {
	SystemStats(ctx context.Context) (*domain.SystemStats, error)
}

// LoginResult is returned by a successful credential exchange. The token is
// opaque to this core; issuance and verification are server concerns.
type LoginResult struct {
	Token string
	User  domain.User
}

// AuthGateway covers the credential and identity operations of the endpoint.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context) (*domain.User, error)
	Users(ctx context.Context) ([]domain.User, error)
}
