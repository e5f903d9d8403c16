// Package catalog wraps the remote product, category, user and auth endpoints.
// Services are stateless: no caching and no retries.
package catalog

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/ecom-storefront/internal/apiclient"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
)

const productPath = "/api/product"

// ProductService wraps /api/product
type ProductService struct {
	api apiclient.Requester
}

// NewProductService creates a product service over a session-bound requester
func NewProductService(api apiclient.Requester) *ProductService {
	return &ProductService{api: api}
}

// ListAll returns products of every status (Admin and Seller)
func (s *ProductService) ListAll(ctx context.Context) ([]domain.Product, error) {
	return apiclient.GetList[domain.Product](ctx, s.api, productPath)
}

// ListApproved returns the customer-visible catalog
func (s *ProductService) ListApproved(ctx context.Context) ([]domain.Product, error) {
	return apiclient.GetList[domain.Product](ctx, s.api, productPath+"/approved")
}

// ListPending returns products awaiting a decision (Admin)
func (s *ProductService) ListPending(ctx context.Context) ([]domain.Product, error) {
	return apiclient.GetList[domain.Product](ctx, s.api, productPath+"/pending")
}

// ListBySeller returns the products created by sellerID
func (s *ProductService) ListBySeller(ctx context.Context, sellerID int64) ([]domain.Product, error) {
	return apiclient.GetList[domain.Product](ctx, s.api, fmt.Sprintf("%s/seller/%d", productPath, sellerID))
}

// ListForRole picks the endpoint variant matching the caller's visibility:
// Admin and Seller see every status, everyone else only approved products.
func (s *ProductService) ListForRole(ctx context.Context, role domain.Role) ([]domain.Product, error) {
	if role == domain.RoleAdmin || role == domain.RoleSeller {
		return s.ListAll(ctx)
	}
	return s.ListApproved(ctx)
}

// GetByID returns one product
func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := apiclient.Get(ctx, s.api, fmt.Sprintf("%s/%d", productPath, id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create submits a new product; the server stores it as Pending
func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error) {
	var p domain.Product
	if err := apiclient.Post(ctx, s.api, productPath, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces a product's editable fields
func (s *ProductService) Update(ctx context.Context, id int64, req dto.UpdateProductRequest) (*domain.Product, error) {
	var p domain.Product
	if err := apiclient.Put(ctx, s.api, fmt.Sprintf("%s/%d", productPath, id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SoftDelete marks a product inactive; the record is kept
func (s *ProductService) SoftDelete(ctx context.Context, id int64) error {
	return apiclient.Delete(ctx, s.api, fmt.Sprintf("%s/%d", productPath, id))
}

// Approve records an admin decision; approved=false rejects
func (s *ProductService) Approve(ctx context.Context, id int64, approved bool) (*domain.Product, error) {
	var p domain.Product
	req := dto.ApproveProductRequest{ProductID: id, Approved: approved}
	if err := apiclient.Post(ctx, s.api, productPath+"/approve", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
