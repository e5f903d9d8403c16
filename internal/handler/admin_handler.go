package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/internal/navigation"
	"github.com/prohmpiriya/ecom-storefront/pkg/response"
)

// AdminHandler serves the admin dashboard, user, category and approval pages
type AdminHandler struct {
	backend *Backend
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(backend *Backend) *AdminHandler {
	return &AdminHandler{backend: backend}
}

type userStatusForm struct {
	IsActive bool `json:"isActive" form:"isActive"`
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	sc := h.backend.scope(Session(c))

	pending, err := sc.products.ListPending(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	all, err := sc.products.ListAll(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	users, err := sc.users.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	categories, err := sc.categories.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, gin.H{
		"user":             Session(c).Current(),
		"pendingProducts":  len(pending),
		"totalProducts":    len(all),
		"totalUsers":       len(users),
		"totalCategories":  len(categories),
		"approvalQueueUrl": navigation.AdminApproval,
	})
}

// Users handles GET /admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.backend.scope(Session(c)).users.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"users": users})
}

// UpdateUserStatus handles POST /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var form userStatusForm
	if err := c.ShouldBind(&form); err != nil {
		badForm(c, err)
		return
	}
	if err := h.backend.scope(Session(c)).users.UpdateStatus(c.Request.Context(), id, form.IsActive); err != nil {
		fail(c, err)
		return
	}
	seeOther(c, navigation.AdminUsers)
}

// Categories handles GET /admin/categories
func (h *AdminHandler) Categories(c *gin.Context) {
	categories, err := h.backend.scope(Session(c)).categories.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"categories": categories})
}

// CreateCategory handles POST /admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		badForm(c, err)
		return
	}
	if _, err := h.backend.scope(Session(c)).categories.Create(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	seeOther(c, navigation.AdminCategories)
}

// UpdateCategory handles POST /admin/categories/:id
func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		badForm(c, err)
		return
	}
	if _, err := h.backend.scope(Session(c)).categories.Update(c.Request.Context(), id, req); err != nil {
		fail(c, err)
		return
	}
	seeOther(c, navigation.AdminCategories)
}

// DeleteCategory handles POST /admin/categories/:id/delete
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.backend.scope(Session(c)).categories.SoftDelete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	seeOther(c, navigation.AdminCategories)
}

// Approval handles GET /admin/products/approval: the pending queue
func (h *AdminHandler) Approval(c *gin.Context) {
	pending, err := h.backend.scope(Session(c)).products.ListPending(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"products": pending})
}

// Decide handles POST /admin/products/approval/:id; approved=false rejects
func (h *AdminHandler) Decide(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if err := c.ShouldBind(&req); err != nil {
		badForm(c, err)
		return
	}
	p, err := h.backend.scope(Session(c)).workflow.Decide(c.Request.Context(), id, req.Approved)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("X-Product-Status", string(p.Status))
	seeOther(c, navigation.AdminApproval)
}
