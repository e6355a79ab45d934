package domain

import "time"

// NotificationType categorises entries in the notification center.
type NotificationType string

const (
	NotifyShipment NotificationType = "shipment"
	NotifyCarrier  NotificationType = "carrier"
	NotifyAlert    NotificationType = "alert"
	NotifySuccess  NotificationType = "success"
)

// Notification is a durable in-session message shown in the notification
// center. Entries are append-only: the only permitted mutation is marking
// them read.
type Notification struct {
	ID    string           `json:"id"`
	Title string           `json:"title"`
	Desc  string           `json:"desc"`
	Type  NotificationType `json:"type"`
	Time  time.Time        `json:"time"`
	Read  bool             `json:"read"`
}

// ToastType categorises transient toast messages.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
)

// Toast is a short-lived message. At most one toast is visible at a time;
// a newer toast replaces the current one rather than queuing behind it.
type Toast struct {
	Message string    `json:"message"`
	Type    ToastType `json:"type"`
}
