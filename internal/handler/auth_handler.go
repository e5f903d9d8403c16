package handler

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/internal/navigation"
	"github.com/prohmpiriya/ecom-storefront/pkg/response"
)

// AuthHandler serves the login, registration and password reset pages
type AuthHandler struct {
	backend *Backend
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(backend *Backend) *AuthHandler {
	return &AuthHandler{backend: backend}
}

type loginForm struct {
	dto.LoginRequest
	ReturnURL string `json:"returnUrl" form:"returnUrl"`
}

// LoginPage handles GET /auth/login. A signed-in user goes to their dashboard.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if id := Session(c).Current(); id != nil {
		seeOther(c, navigation.DashboardFor(id.Role))
		return
	}
	returnURL, _ := navigation.SafeReturnPath(c.Query(navigation.ReturnURLParam))
	response.Success(c, gin.H{"returnUrl": returnURL})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		badForm(c, err)
		return
	}
	if form.ReturnURL == "" {
		form.ReturnURL = c.Query(navigation.ReturnURLParam)
	}

	id, err := Session(c).Login(c.Request.Context(), form.LoginRequest)
	if err != nil {
		fail(c, err)
		return
	}
	seeOther(c, navigation.RedirectAfterLogin(id.Role, form.ReturnURL))
}

// RegisterPage handles GET /auth/register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	response.Success(c, gin.H{"roles": []domain.Role{domain.RoleCustomer, domain.RoleSeller}})
}

// Register handles POST /auth/register. Admin accounts are only created from
// the admin registration page.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		badForm(c, err)
		return
	}
	if req.Role == domain.RoleAdmin {
		response.BadRequest(c, "Validation failed", "admin accounts are created by an administrator")
		return
	}

	id, err := Session(c).Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	if id == nil {
		seeOther(c, navigation.Login)
		return
	}
	seeOther(c, navigation.DashboardFor(id.Role))
}

// AdminRegisterPage handles GET /auth/admin-register
func (h *AuthHandler) AdminRegisterPage(c *gin.Context) {
	response.Success(c, gin.H{"roles": domain.Roles})
}

// AdminRegister handles POST /auth/admin-register. The admin's own session is
// left as it is.
func (h *AuthHandler) AdminRegister(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		badForm(c, err)
		return
	}
	if _, err := h.backend.scope(Session(c)).auth.Register(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	seeOther(c, navigation.AdminUsers)
}

// ForgotPasswordPage handles GET /auth/forgot-password
func (h *AuthHandler) ForgotPasswordPage(c *gin.Context) {
	response.Success(c, gin.H{})
}

// ForgotPassword handles POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		badForm(c, err)
		return
	}
	if err := h.backend.anonymousAuth().ForgotPassword(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	seeOther(c, navigation.ResetPassword+"?"+url.Values{"email": {req.Email}}.Encode())
}

// ResetPasswordPage handles GET /auth/reset-password
func (h *AuthHandler) ResetPasswordPage(c *gin.Context) {
	response.Success(c, gin.H{"email": c.Query("email")})
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		badForm(c, err)
		return
	}
	if err := h.backend.anonymousAuth().ResetPassword(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	seeOther(c, navigation.Login)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := Session(c).Logout(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	follow(c, navigation.Login)
}

// UnauthorizedPage handles GET /unauthorized
func (h *AuthHandler) UnauthorizedPage(c *gin.Context) {
	view := gin.H{"message": "You do not have permission to view this page."}
	if id := Session(c).Current(); id != nil {
		view["dashboard"] = navigation.DashboardFor(id.Role)
	}
	response.Success(c, view)
}
