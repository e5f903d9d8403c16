package domain

import "strings"

// Role is the canonical user role. Every role string from outside the process
// (token claims, API payloads, stored identities) goes through ParseRole once.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleSeller   Role = "Seller"
	RoleCustomer Role = "Customer"
)

// Roles lists the closed set of roles
var Roles = []Role{RoleAdmin, RoleSeller, RoleCustomer}

// ParseRole normalizes s case-insensitively; unknown values yield "" and false
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "seller":
		return RoleSeller, true
	case "customer":
		return RoleCustomer, true
	}
	return "", false
}

// Valid reports whether r is one of the closed set
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSeller || r == RoleCustomer
}

func (r Role) String() string {
	return string(r)
}

// In reports whether r is a member of set
func (r Role) In(set []Role) bool {
	for _, s := range set {
		if r == s {
			return true
		}
	}
	return false
}
