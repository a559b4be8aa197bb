package access

import (
	"strings"
	"time"
)

// Role is the fixed role enumeration carried in the session token.
// It is immutable for the lifetime of a session.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleCoAdmin    Role = "co_admin"
	RoleFaculty    Role = "faculty"
	RoleStudent    Role = "student"
	RoleB2CStudent Role = "b2c_student"
	RoleB2CParent  Role = "b2c_parent"
)

var knownRoles = map[Role]struct{}{
	RoleSuperAdmin: {},
	RoleCoAdmin:    {},
	RoleFaculty:    {},
	RoleStudent:    {},
	RoleB2CStudent: {},
	RoleB2CParent:  {},
}

// ParseRole normalizes raw input to a Role; unknown input is returned
// as-is so callers can reject it explicitly.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := knownRoles[r]
	return r, ok
}

// Principal is an authenticated actor as seen by the evaluator.
type Principal struct {
	ID       string
	Role     Role
	SchoolID string
}

// Grant is one persisted access row. At most one grant exists per
// (principal, module) pair; writes are upserts on that key.
type Grant struct {
	PrincipalID string    `json:"principal_id"`
	Module      string    `json:"module"`
	Level       Level     `json:"access_level"`
	SubDomain   string    `json:"sub_domain,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Map is a principal's resolved module → level view, as consumed by the
// evaluator. Module keys are case-sensitive exact matches.
type Map map[string]Level

// Decision answers the four permission questions for one module.
type Decision struct {
	CanView   bool  `json:"can_view"`
	CanEdit   bool  `json:"can_edit"`
	CanDelete bool  `json:"can_delete"`
	HasFull   bool  `json:"has_full"`
	Level     Level `json:"access_level"`
}
