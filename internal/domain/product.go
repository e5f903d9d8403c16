package domain

import "time"

// ProductStatus is the approval state of a product
type ProductStatus string

const (
	StatusPending  ProductStatus = "Pending"
	StatusApproved ProductStatus = "Approved"
	StatusRejected ProductStatus = "Rejected"
)

// DefaultImageURL is used when a product is submitted without an image
const DefaultImageURL = "https://via.placeholder.com/300x200?text=No+Image"

// Product represents a catalog item
type Product struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Price            float64       `json:"price"`
	StockQuantity    int           `json:"stockQuantity"`
	ImageURL         string        `json:"imageUrl"`
	CategoryID       int64         `json:"categoryId"`
	CategoryName     string        `json:"categoryName"`
	CreatedByUserID  int64         `json:"createdByUserId"`
	CreatedByEmail   string        `json:"createdByEmail"`
	Status           ProductStatus `json:"status"`
	IsActive         bool          `json:"isActive"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        *time.Time    `json:"updatedAt"`
	ApprovedAt       *time.Time    `json:"approvedAt"`
	ApprovedByUserID *int64        `json:"approvedByUserId"`
	ApprovedByEmail  *string       `json:"approvedByEmail"`
}

// IsApproved returns true if the product is visible to customers
func (p *Product) IsApproved() bool {
	return p.Status == StatusApproved
}

// IsPending returns true if the product awaits an admin decision
func (p *Product) IsPending() bool {
	return p.Status == StatusPending
}

// Category groups products. Deleting a category only deactivates it.
type Category struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// User is an account as seen by the admin user-management screens
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
