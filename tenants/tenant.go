package tenants

import "strings"

// UserStatus is ordered: Registered < Active < Inactive.
type UserStatus int

const (
	StatusRegistered UserStatus = iota
	StatusActive
	StatusInactive
)

func (s UserStatus) String() string {
	switch s {
	case StatusRegistered:
		return "REGISTERED"
	case StatusActive:
		return "ACTIVE"
	case StatusInactive:
		return "INACTIVE"
	}
	return "UNKNOWN"
}

// ParseUserStatus maps a stored status name to a UserStatus.
func ParseUserStatus(s string) (UserStatus, bool) {
	switch strings.ToUpper(s) {
	case "REGISTERED":
		return StatusRegistered, true
	case "ACTIVE":
		return StatusActive, true
	case "INACTIVE":
		return StatusInactive, true
	}
	return StatusRegistered, false
}

// UserTenant is a user's membership of a tenant.
type UserTenant struct {
	ID       string     `json:"id"`
	UserID   string     `json:"userId"`
	TenantID string     `json:"tenantId"`
	Status   UserStatus `json:"status"`
}
