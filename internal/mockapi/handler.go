package mockapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/pkg/response"
)

type handler struct {
	svc *service
}

// writeError maps service errors to status codes
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		response.Unauthorized(c, "Authentication required")
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, domain.ErrUserInactive):
		response.Forbidden(c, "User account is inactive")
	case domain.IsPermissionError(err):
		response.Forbidden(c, err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		response.Error(c, http.StatusConflict, "User with this email already exists")
	case domain.IsValidationError(err), errors.Is(err, domain.ErrInvalidOTP), errors.Is(err, ErrSelfDeactivation):
		response.BadRequest(c, "Validation failed", err.Error())
	default:
		response.InternalError(c, err)
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

// --- auth ---

// Login handles POST /api/Auth/login
func (h *handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed", err.Error())
		return
	}

	result, err := h.svc.login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessMessage(c, result, "Login successful")
}

// Register handles POST /api/Auth/register
func (h *handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed", err.Error())
		return
	}

	result, err := h.svc.register(c.Request.Context(), req, callerOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, result)
}

// ForgotPassword handles POST /api/Auth/forgot-password
func (h *handler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed", err.Error())
		return
	}
	if err := h.svc.forgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessMessage(c, nil, "If the email is registered, a reset code has been sent")
}

// ResetPassword handles POST /api/Auth/reset-password
func (h *handler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed", err.Error())
		return
	}
	if err := h.svc.resetPassword(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessMessage(c, nil, "Password has been reset")
}

// --- products ---

func (h *handler) ListProducts(c *gin.Context) {
	response.Success(c, h.svc.listProducts(callerOf(c)))
}

func (h *handler) ListApproved(c *gin.Context) {
	response.Success(c, h.svc.listApproved())
}

func (h *handler) ListPending(c *gin.Context) {
	items, err := h.svc.listPending(callerOf(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, items)
}

// ListBySeller answers with the paginated payload when page/pageSize are given
func (h *handler) ListBySeller(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	items := h.svc.listBySeller(callerOf(c), id)

	if c.Query("page") == "" && c.Query("pageSize") == "" {
		response.Success(c, items)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	response.Success(c, response.NewPage(items, page, size))
}

func (h *handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.svc.getProduct(callerOf(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, p)
}

func (h *handler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed", err.Error())
		return
	}
	p, err := h.svc.createProduct(c.Request.Context(), callerOf(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, p)
}

func (h *handler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed", err.Error())
		return
	}
	p, err := h.svc.updateProduct(c.Request.Context(), callerOf(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, p)
}

func (h *handler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.deleteProduct(c.Request.Context(), callerOf(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessMessage(c, nil, "Product deleted")
}

// Approve handles POST /api/product/approve; approved=false rejects
func (h *handler) Approve(c *gin.Context) {
	var req dto.ApproveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed", err.Error())
		return
	}
	p, err := h.svc.decide(c.Request.Context(), callerOf(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, p)
}

// --- categories ---

func (h *handler) ListCategories(c *gin.Context) {
	response.Success(c, h.svc.store.listCategories())
}

func (h *handler) GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cat, found := h.svc.store.category(id)
	if !found {
		writeError(c, domain.ErrCategoryNotFound)
		return
	}
	response.Success(c, cat)
}

func (h *handler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed", err.Error())
		return
	}
	response.Created(c, h.svc.createCategory(req))
}

func (h *handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed", err.Error())
		return
	}
	cat, err := h.svc.updateCategory(id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, cat)
}

func (h *handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.deleteCategory(id); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessMessage(c, nil, "Category deleted")
}

// --- users ---

func (h *handler) ListUsers(c *gin.Context) {
	response.Success(c, h.svc.store.listUsers())
}

func (h *handler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.svc.getUser(id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, u)
}

func (h *handler) UpdateUserStatus(c *gin.Context) {
	var req dto.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed", err.Error())
		return
	}
	if err := h.svc.updateUserStatus(callerOf(c), req); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessMessage(c, nil, "User status updated")
}
