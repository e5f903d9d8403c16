package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/internal/lifecycle"
	"github.com/prohmpiriya/ecom-storefront/internal/navigation"
	"github.com/prohmpiriya/ecom-storefront/pkg/response"
)

// ProductHandler serves the catalog pages and product forms
type ProductHandler struct {
	backend *Backend
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(backend *Backend) *ProductHandler {
	return &ProductHandler{backend: backend}
}

func productPath(id int64) string {
	return fmt.Sprintf("/products/%d", id)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

// Root handles GET / by sending the caller to their landing page
func (h *ProductHandler) Root(c *gin.Context) {
	role, _ := Session(c).CurrentRole()
	seeOther(c, navigation.DashboardFor(role))
}

// Home handles GET /home: the approved catalog
func (h *ProductHandler) Home(c *gin.Context) {
	items, err := h.backend.scope(Session(c)).products.ListApproved(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"user": Session(c).Current(), "products": items})
}

// List handles GET /products with the visibility of the current role
func (h *ProductHandler) List(c *gin.Context) {
	mgr := Session(c)
	items, err := h.backend.scope(mgr).workflow.Catalog(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"products":  items,
		"canCreate": lifecycle.CanCreate(mgr.Current()),
	})
}

// Detail handles GET /products/:id
func (h *ProductHandler) Detail(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	view, err := h.backend.scope(Session(c)).workflow.View(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// CreatePage handles GET /products/create
func (h *ProductHandler) CreatePage(c *gin.Context) {
	categories, err := h.backend.scope(Session(c)).categories.ListActive(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"categories": categories, "defaultImageUrl": domain.DefaultImageURL})
}

// Create handles POST /products/create
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		badForm(c, err)
		return
	}
	p, err := h.backend.scope(Session(c)).workflow.Submit(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	seeOther(c, productPath(p.ID))
}

// EditPage handles GET /products/edit/:id. Callers who may not edit the
// product are sent to the unauthorized page.
func (h *ProductHandler) EditPage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	sc := h.backend.scope(Session(c))
	view, err := sc.workflow.View(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !view.CanEdit {
		seeOther(c, navigation.Unauthorized)
		return
	}
	categories, err := sc.categories.ListActive(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"product": view, "categories": categories})
}

// Edit handles POST /products/edit/:id
func (h *ProductHandler) Edit(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		badForm(c, err)
		return
	}
	if _, err := h.backend.scope(Session(c)).workflow.Edit(c.Request.Context(), id, req); err != nil {
		fail(c, err)
		return
	}
	seeOther(c, productPath(id))
}

// Delete handles POST /products/:id/delete
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.backend.scope(Session(c)).workflow.Remove(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	seeOther(c, navigation.Products)
}

// SellerDashboard handles GET /seller/dashboard: the seller's own products by status
func (h *ProductHandler) SellerDashboard(c *gin.Context) {
	mgr := Session(c)
	me := mgr.Current()
	if me == nil {
		fail(c, domain.ErrNotAuthenticated)
		return
	}

	products := h.backend.scope(mgr).products
	var (
		items []domain.Product
		err   error
	)
	if sellerID, parseErr := strconv.ParseInt(me.ID, 10, 64); parseErr == nil {
		items, err = products.ListBySeller(c.Request.Context(), sellerID)
	} else {
		items, err = ownedBy(c.Request.Context(), products.ListAll, me)
	}
	if err != nil {
		fail(c, err)
		return
	}

	counts := map[domain.ProductStatus]int{}
	for _, p := range items {
		counts[p.Status]++
	}
	response.Success(c, gin.H{"user": me, "products": items, "counts": counts})
}

// ownedBy filters a full listing by creator email, for identities without a numeric id
func ownedBy(ctx context.Context, list func(context.Context) ([]domain.Product, error), me *domain.Identity) ([]domain.Product, error) {
	all, err := list(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if me.SameEmail(p.CreatedByEmail) {
			mine = append(mine, p)
		}
	}
	return mine, nil
}
