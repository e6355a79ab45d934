package domain

import (
	"errors"
	"time"
)

// ShipmentStatus represents the operational state of a shipment.
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "pending"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusDelivered ShipmentStatus = "delivered"
	StatusCancelled ShipmentStatus = "cancelled"
	StatusDelayed   ShipmentStatus = "delayed"
)

// Valid reports whether s is one of the enumerated statuses.
func (s ShipmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusCancelled, StatusDelayed:
		return true
	}
	return false
}

// Priority represents the handling priority of a shipment.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

var ErrShipmentNotFound = errors.New("shipment not found")
var ErrMutationInFlight = errors.New("mutation already in flight for this record")
var ErrNoPendingRemoval = errors.New("no removal pending confirmation")
var ErrNoSession = errors.New("no active session")
var ErrForbidden = errors.New("access forbidden")

// Shipment is the core record managed by the console.
type Shipment struct {
	ID             string `json:"id"`
	TrackingNumber string `json:"tracking_number,omitempty"`

	ShipperName    string `json:"shipper_name"`
	ShipperEmail   string `json:"shipper_email,omitempty"`
	ShipperPhone   string `json:"shipper_phone,omitempty"`
	CarrierName    string `json:"carrier_name"`
	CarrierContact string `json:"carrier_contact,omitempty"`

	PickupLocation    string `json:"pickup_location"`
	PickupDate        string `json:"pickup_date"`
	DeliveryLocation  string `json:"delivery_location"`
	DeliveryDate      string `json:"delivery_date,omitempty"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`

	WeightKg   float64 `json:"weight_kg,omitempty"`
	Dimensions string  `json:"dimensions,omitempty"`
	CargoType  string  `json:"cargo_type,omitempty"`

	RateAmount float64 `json:"rate_amount"`
	Currency   string  `json:"currency"`

	Status        ShipmentStatus `json:"status"`
	Priority      Priority       `json:"priority"`
	Notes         string         `json:"notes,omitempty"`
	IsFlagged     bool           `json:"is_flagged"`
	FlaggedReason string         `json:"flagged_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Label returns the identifier shown to operators: the tracking number when
// assigned, the record id otherwise.
func (s *Shipment) Label() string {
	if s.TrackingNumber != "" {
		return s.TrackingNumber
	}
	return s.ID
}

// ShipmentFilter is the optional predicate set for list queries.
// A zero-valued field means "no constraint on that dimension", not "match empty".
type ShipmentFilter struct {
	Status      ShipmentStatus `json:"status,omitempty"`
	CarrierName string         `json:"carrier_name,omitempty"`
	Priority    Priority       `json:"priority,omitempty"`
	IsFlagged   *bool          `json:"is_flagged,omitempty"`
	DateFrom    string         `json:"date_from,omitempty"`
	DateTo      string         `json:"date_to,omitempty"`
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// SortConfig holds the single active sort key for list queries.
type SortConfig struct {
	Field string    `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort orders newest records first, matching the console's initial view.
func DefaultSort() SortConfig {
	return SortConfig{Field: "created_at", Order: SortDesc}
}

// ShipmentPage is one page of list results as returned by the gateway.
type ShipmentPage struct {
	Items      []Shipment `json:"items"`
	TotalCount int        `json:"totalCount"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}
