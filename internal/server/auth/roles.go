package auth

import (
	"fmt"

	"github.com/dmitrijs2005/medvault/internal/common"
)

// Role is an explicit account role. Authorization decisions go through
// Role.Can rather than string comparisons scattered over handlers.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Capability is a discrete permission a role may hold.
type Capability int

const (
	// CapViewRecords allows reading patient records.
	CapViewRecords Capability = iota
	// CapEditRecords allows creating, updating, and deleting patient records.
	CapEditRecords
	// CapManageAccounts allows administrative account operations.
	CapManageAccounts
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapViewRecords:    true,
		CapEditRecords:    true,
		CapManageAccounts: true,
	},
	RoleEditor: {
		CapViewRecords: true,
		CapEditRecords: true,
	},
	RoleViewer: {
		CapViewRecords: true,
	},
}

// Can reports whether the role holds the given capability.
// Unknown roles hold nothing.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", common.ErrorInvalidInput, s)
	}
	return r, nil
}
