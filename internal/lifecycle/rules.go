// Package lifecycle holds the product approval state machine and the rules for
// who may request which transition.
package lifecycle

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
)

// CanCreate reports whether actor may submit products
func CanCreate(actor *domain.Identity) bool {
	return actor != nil && (actor.Role == domain.RoleAdmin || actor.Role == domain.RoleSeller)
}

// CanModify reports whether actor may update or delete p: Admin always, a
// Seller only for products created under the same email.
func CanModify(actor *domain.Identity, p *domain.Product) bool {
	if actor == nil || p == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSeller:
		return actor.SameEmail(p.CreatedByEmail)
	}
	return false
}

// CanDecide reports whether actor may approve or reject products
func CanDecide(actor *domain.Identity) bool {
	return actor != nil && actor.Role == domain.RoleAdmin
}

// Validate checks the editable fields of a submission
func Validate(req dto.CreateProductRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > domain.MaxProductNameLength {
		return domain.ErrInvalidProductName
	}
	if utf8.RuneCountInString(req.Description) > domain.MaxDescriptionLength {
		return domain.ErrInvalidDescription
	}
	if req.Price < domain.MinProductPrice {
		return domain.ErrInvalidPrice
	}
	if req.StockQuantity < domain.MinStockQuantity {
		return domain.ErrInvalidStock
	}
	if req.CategoryID <= 0 {
		return domain.ErrInvalidCategoryID
	}
	return nil
}

// ValidateCreate additionally requires the referenced category to be active
func ValidateCreate(req dto.CreateProductRequest, category *domain.Category) error {
	if err := Validate(req); err != nil {
		return err
	}
	if category == nil {
		return domain.ErrCategoryNotFound
	}
	if !category.IsActive {
		return domain.ErrCategoryInactive
	}
	return nil
}

// NewPending builds a freshly submitted product. Pending is the only creation state.
func NewPending(id int64, req dto.CreateProductRequest, category domain.Category, ownerID int64, ownerEmail string, now time.Time) domain.Product {
	image := strings.TrimSpace(req.ImageURL)
	if image == "" {
		image = domain.DefaultImageURL
	}
	return domain.Product{
		ID:              id,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Price:           req.Price,
		StockQuantity:   req.StockQuantity,
		ImageURL:        image,
		CategoryID:      category.ID,
		CategoryName:    category.Name,
		CreatedByUserID: ownerID,
		CreatedByEmail:  ownerEmail,
		Status:          domain.StatusPending,
		IsActive:        true,
		CreatedAt:       now,
	}
}

// Decide applies an admin decision. Repeating or reversing a decision is
// allowed and overwrites the previous decision metadata.
func Decide(p *domain.Product, approved bool, actor *domain.Identity, actorID int64, now time.Time) error {
	if !CanDecide(actor) {
		return domain.ErrApprovalRequired
	}

	if approved {
		p.Status = domain.StatusApproved
	} else {
		p.Status = domain.StatusRejected
	}
	at := now
	email := actor.Email
	byID := actorID
	p.ApprovedAt = &at
	p.ApprovedByEmail = &email
	p.ApprovedByUserID = &byID
	p.UpdatedAt = &at
	return nil
}
