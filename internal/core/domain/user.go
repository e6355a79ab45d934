package domain

import "time"

// Role is the authorisation level of a console user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// User is the authenticated operator of the console.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SystemStats are the aggregate counters shown on the dashboard landing view.
type SystemStats struct {
	TotalShipments     int `json:"totalShipments"`
	PendingShipments   int `json:"pendingShipments"`
	InTransitShipments int `json:"inTransitShipments"`
	DeliveredShipments int `json:"deliveredShipments"`
	TotalUsers         int `json:"totalUsers"`
}
