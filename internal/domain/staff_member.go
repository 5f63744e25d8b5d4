package domain

import (
	"strings"
	"time"
)

// StaffRole enumerates shop roles.
type StaffRole string

const (
	StaffRoleFrontDesk StaffRole = "FRONT_DESK"
	StaffRoleStringer  StaffRole = "STRINGER"
	StaffRoleManager   StaffRole = "MANAGER"
)

// Valid reports whether r is one of the shop roles.
func (r StaffRole) Valid() bool {
	switch r {
	case StaffRoleFrontDesk, StaffRoleStringer, StaffRoleManager:
		return true
	}
	return false
}

// ParseStaffRole accepts any case and surrounding space, plus "front-desk".
func ParseStaffRole(s string) (StaffRole, bool) {
	role := StaffRole(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	return role, role.Valid()
}

// StaffMember is a shop employee who can sign in.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActiveManager reports whether removing this member could leave the shop without a manager.
func (s StaffMember) IsActiveManager() bool {
	return s.Active && s.Role == StaffRoleManager
}
