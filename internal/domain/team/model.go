package team

import "time"

// Role is a member's privilege level inside a team, ordered
// owner > admin > editor > viewer.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

type Team struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	PlanType  string    `json:"plan_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantContext is the resolved acting identity for one request. It is
// built once by the auth middleware and passed explicitly into every
// service call; nothing below the HTTP layer reads ambient session state.
type TenantContext struct {
	TeamID     int64
	UserID     int64
	Role       Role
	Subscribed bool
}
