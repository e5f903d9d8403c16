// Package access decides whether the current session may open a destination.
package access

import (
	"context"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/navigation"
)

// Session is what the evaluator needs to know about the caller
type Session interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentRole() (domain.Role, bool)
}

// Decision is the outcome of an access check
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	}
	return "unknown"
}

// Evaluate applies, in order: no token denies as unauthenticated, an empty
// requirement allows, membership of the current role allows, anything else is
// forbidden. A token without an identity has no role and so is forbidden from
// role-restricted destinations.
func Evaluate(ctx context.Context, required []domain.Role, s Session) Decision {
	if s == nil || !s.IsAuthenticated(ctx) {
		return DenyUnauthenticated
	}
	if len(required) == 0 {
		return Allow
	}
	if role, ok := s.CurrentRole(); ok && role.In(required) {
		return Allow
	}
	return DenyForbidden
}

// RedirectFor returns where a denied caller is sent. returnPath is the
// destination that was refused and is carried through login.
func RedirectFor(d Decision, returnPath string) string {
	switch d {
	case DenyUnauthenticated:
		return navigation.LoginURL(returnPath)
	case DenyForbidden:
		return navigation.Unauthorized
	}
	return ""
}
