package catalog

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/ecom-storefront/internal/apiclient"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
)

const categoryPath = "/api/productcategory"

// CategoryService wraps /api/productcategory
type CategoryService struct {
	api apiclient.Requester
}

func NewCategoryService(api apiclient.Requester) *CategoryService {
	return &CategoryService{api: api}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return apiclient.GetList[domain.Category](ctx, s.api, categoryPath)
}

// ListActive filters List to categories a new product may reference
func (s *CategoryService) ListActive(ctx context.Context) ([]domain.Category, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]domain.Category, 0, len(all))
	for _, c := range all {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	if err := apiclient.Get(ctx, s.api, fmt.Sprintf("%s/%d", categoryPath, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*domain.Category, error) {
	var c domain.Category
	if err := apiclient.Post(ctx, s.api, categoryPath, req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, req dto.UpdateCategoryRequest) (*domain.Category, error) {
	var c domain.Category
	if err := apiclient.Put(ctx, s.api, fmt.Sprintf("%s/%d", categoryPath, id), req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SoftDelete deactivates a category; products referencing it keep the reference
func (s *CategoryService) SoftDelete(ctx context.Context, id int64) error {
	return apiclient.Delete(ctx, s.api, fmt.Sprintf("%s/%d", categoryPath, id))
}
