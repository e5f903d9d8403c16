package lifecycle_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/internal/lifecycle"
)

var (
	admin    = &domain.Identity{ID: "1", Email: "admin@shop.com", Role: domain.RoleAdmin}
	sellerA  = &domain.Identity{ID: "2", Email: "a@shop.com", Role: domain.RoleSeller}
	sellerB  = &domain.Identity{ID: "3", Email: "b@shop.com", Role: domain.RoleSeller}
	customer = &domain.Identity{ID: "4", Email: "c@shop.com", Role: domain.RoleCustomer}
)

func validRequest() dto.CreateProductRequest {
	return dto.CreateProductRequest{Name: "Lamp", Price: 10, StockQuantity: 1, CategoryID: 1}
}

func TestCanModify(t *testing.T) {
	p := &domain.Product{CreatedByEmail: "A@Shop.com"}

	tests := []struct {
		name  string
		actor *domain.Identity
		want  bool
	}{
		{"admin", admin, true},
		{"owner, different case", sellerA, true},
		{"other seller", sellerB, false},
		{"customer", customer, false},
		{"anonymous", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lifecycle.CanModify(tt.actor, p); got != tt.want {
				t.Errorf("CanModify() = %v, want %v", got, tt.want)
			}
		})
	}
	assert.False(t, lifecycle.CanModify(admin, nil))
}

func TestCanCreateAndDecide(t *testing.T) {
	assert.True(t, lifecycle.CanCreate(admin))
	assert.True(t, lifecycle.CanCreate(sellerA))
	assert.False(t, lifecycle.CanCreate(customer))
	assert.False(t, lifecycle.CanCreate(nil))

	assert.True(t, lifecycle.CanDecide(admin))
	assert.False(t, lifecycle.CanDecide(sellerA))
	assert.False(t, lifecycle.CanDecide(nil))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *dto.CreateProductRequest)
		want   error
	}{
		{"valid", func(r *dto.CreateProductRequest) {}, nil},
		{"blank name", func(r *dto.CreateProductRequest) { r.Name = "   " }, domain.ErrInvalidProductName},
		{"long name", func(r *dto.CreateProductRequest) { r.Name = strings.Repeat("n", 201) }, domain.ErrInvalidProductName},
		{"long description", func(r *dto.CreateProductRequest) { r.Description = strings.Repeat("d", 2001) }, domain.ErrInvalidDescription},
		{"zero price", func(r *dto.CreateProductRequest) { r.Price = 0 }, domain.ErrInvalidPrice},
		{"minimum price", func(r *dto.CreateProductRequest) { r.Price = 0.01 }, nil},
		{"negative stock", func(r *dto.CreateProductRequest) { r.StockQuantity = -1 }, domain.ErrInvalidStock},
		{"zero stock", func(r *dto.CreateProductRequest) { r.StockQuantity = 0 }, nil},
		{"no category", func(r *dto.CreateProductRequest) { r.CategoryID = 0 }, domain.ErrInvalidCategoryID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			if err := lifecycle.Validate(req); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateCreate_Category(t *testing.T) {
	req := validRequest()
	assert.ErrorIs(t, lifecycle.ValidateCreate(req, nil), domain.ErrCategoryNotFound)
	assert.ErrorIs(t, lifecycle.ValidateCreate(req, &domain.Category{ID: 1}), domain.ErrCategoryInactive)
	assert.NoError(t, lifecycle.ValidateCreate(req, &domain.Category{ID: 1, IsActive: true}))
}

func TestNewPending(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	req := validRequest()
	req.Name = "  Lamp  "

	p := lifecycle.NewPending(7, req, domain.Category{ID: 1, Name: "Home"}, 2, "a@shop.com", now)

	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, domain.DefaultImageURL, p.ImageURL)
	assert.Equal(t, "Home", p.CategoryName)
	assert.True(t, p.IsActive)
	assert.Nil(t, p.ApprovedAt)
	assert.Nil(t, p.ApprovedByEmail)
}

func TestDecide(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	other := &domain.Identity{Email: "other-admin@shop.com", Role: domain.RoleAdmin}
	p := &domain.Product{Status: domain.StatusPending}

	require.ErrorIs(t, lifecycle.Decide(p, true, sellerA, 2, t1), domain.ErrApprovalRequired)
	assert.Equal(t, domain.StatusPending, p.Status)

	require.NoError(t, lifecycle.Decide(p, true, admin, 1, t1))
	assert.Equal(t, domain.StatusApproved, p.Status)
	assert.Equal(t, "admin@shop.com", *p.ApprovedByEmail)
	assert.Equal(t, t1, *p.ApprovedAt)

	// reversal overwrites the metadata
	require.NoError(t, lifecycle.Decide(p, false, other, 9, t2))
	assert.Equal(t, domain.StatusRejected, p.Status)
	assert.Equal(t, "other-admin@shop.com", *p.ApprovedByEmail)
	assert.Equal(t, int64(9), *p.ApprovedByUserID)
	assert.Equal(t, t2, *p.ApprovedAt)
}
