package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/ecom-storefront/internal/apiclient"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/pkg/response"
)

func seeOther(c *gin.Context, path string) {
	c.Redirect(http.StatusSeeOther, path)
}

// follow answers with the navigation the session requested, or fallback
func follow(c *gin.Context, fallback string) {
	if path := pendingRedirect(c); path != "" {
		seeOther(c, path)
		return
	}
	seeOther(c, fallback)
}

func badForm(c *gin.Context, err error) {
	response.BadRequest(c, "Validation failed", err.Error())
}

// fail renders err. A pending navigation (the session was torn down by a 401)
// takes precedence over the error body.
func fail(c *gin.Context, err error) {
	if path := pendingRedirect(c); path != "" {
		seeOther(c, path)
		return
	}

	var apiErr *apiclient.Error
	switch {
	case errors.As(err, &apiErr):
		response.Error(c, statusForKind(apiErr.Kind), apiErr.UserMessage(), apiErr.Errors...)
	case errors.Is(err, domain.ErrNotAuthenticated):
		response.Unauthorized(c, "Please log in to continue")
	case errors.Is(err, domain.ErrNoIdentity):
		response.Error(c, http.StatusBadGateway, "The server response did not identify the user")
	case domain.IsPermissionError(err):
		response.Forbidden(c, err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, "Validation failed", err.Error())
	default:
		response.InternalError(c, err)
	}
}

func statusForKind(k apiclient.Kind) int {
	switch k {
	case apiclient.KindUnauthorized:
		return http.StatusUnauthorized
	case apiclient.KindForbidden:
		return http.StatusForbidden
	case apiclient.KindNotFound:
		return http.StatusNotFound
	case apiclient.KindValidationFailed:
		return http.StatusBadRequest
	case apiclient.KindNetworkUnreachable:
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
