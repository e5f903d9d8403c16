package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/ecom-storefront/internal/access"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/navigation"
)

// RequireRoles admits authenticated callers whose role is in roles (any role
// when roles is empty). Others are sent to the login page, carrying the
// refused GET path, or to the unauthorized page.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := access.DenyUnauthenticated
		if mgr := Session(c); mgr != nil {
			decision = access.Evaluate(c.Request.Context(), roles, mgr)
		}
		if decision == access.Allow {
			c.Next()
			return
		}

		var returnPath string
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			returnPath = c.Request.URL.RequestURI()
		}
		c.Redirect(http.StatusSeeOther, access.RedirectFor(decision, returnPath))
		c.Abort()
	}
}

// guard returns the access check registered for path in the route table.
// Paths missing from the table require authentication.
func guard(path string) gin.HandlerFunc {
	route, ok := navigation.Lookup(path)
	if ok && route.Public {
		return func(c *gin.Context) { c.Next() }
	}
	return RequireRoles(route.Roles...)
}
