// Package navigation decides where a role belongs and where a user goes after
// an auth challenge.
package navigation

import (
	"net/url"
	"strings"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
)

// Route paths
const (
	Login           = "/auth/login"
	Register        = "/auth/register"
	ForgotPassword  = "/auth/forgot-password"
	ResetPassword   = "/auth/reset-password"
	AdminRegister   = "/auth/admin-register"
	Unauthorized    = "/unauthorized"
	Home            = "/home"
	Products        = "/products"
	ProductCreate   = "/products/create"
	ProductEdit     = "/products/edit/:id"
	ProductDetail   = "/products/:id"
	SellerDashboard = "/seller/dashboard"
	AdminDashboard  = "/admin/dashboard"
	AdminUsers      = "/admin/users"
	AdminCategories = "/admin/categories"
	AdminApproval   = "/admin/products/approval"
)

// ReturnURLParam is the query parameter carrying the interrupted deep link
const ReturnURLParam = "returnUrl"

// DashboardFor returns the landing route of role. Customer, unknown and empty
// roles all land on the customer home.
func DashboardFor(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return AdminDashboard
	case domain.RoleSeller:
		return SellerDashboard
	default:
		return Home
	}
}

// RedirectAfterLogin prefers a captured return path over the role dashboard
func RedirectAfterLogin(role domain.Role, returnPath string) string {
	if p, ok := SafeReturnPath(returnPath); ok {
		return p
	}
	return DashboardFor(role)
}

// SafeReturnPath accepts only site-relative paths. Auth entry points are
// rejected so a login never bounces back to itself.
func SafeReturnPath(p string) (string, bool) {
	p = strings.TrimSpace(p)
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "", false
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if u.Path == Login || u.Path == Register {
		return "", false
	}
	return p, true
}

// LoginURL is the login entry point carrying returnPath when it is safe
func LoginURL(returnPath string) string {
	p, ok := SafeReturnPath(returnPath)
	if !ok {
		return Login
	}
	return Login + "?" + url.Values{ReturnURLParam: {p}}.Encode()
}
