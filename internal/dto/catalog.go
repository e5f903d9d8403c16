package dto

// CreateProductRequest represents a product submission
type CreateProductRequest struct {
	Name          string  `json:"name" form:"name" binding:"required,max=200"`
	Description   string  `json:"description" form:"description" binding:"max=2000"`
	Price         float64 `json:"price" form:"price" binding:"gte=0.01"`
	StockQuantity int     `json:"stockQuantity" form:"stockQuantity" binding:"gte=0"`
	ImageURL      string  `json:"imageUrl" form:"imageUrl"`
	CategoryID    int64   `json:"categoryId" form:"categoryId" binding:"required,gt=0"`
}

// UpdateProductRequest carries the same fields as a submission
type UpdateProductRequest CreateProductRequest

// ApproveProductRequest records an admin decision; approved=false rejects
type ApproveProductRequest struct {
	ProductID int64 `json:"productId" form:"productId" binding:"required,gt=0"`
	Approved  bool  `json:"approved" form:"approved"`
}

// DecisionRequest is the web tier's body for approve/reject on a known product
type DecisionRequest struct {
	Approved bool `json:"approved" form:"approved"`
}

// CreateCategoryRequest represents category creation
type CreateCategoryRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=100"`
	Description string `json:"description" form:"description" binding:"max=2000"`
}

// UpdateCategoryRequest represents category update
type UpdateCategoryRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=100"`
	Description string `json:"description" form:"description" binding:"max=2000"`
	IsActive    bool   `json:"isActive" form:"isActive"`
}

// UpdateUserStatusRequest enables or disables an account
type UpdateUserStatusRequest struct {
	UserID   int64 `json:"userId" form:"userId" binding:"required,gt=0"`
	IsActive bool  `json:"isActive" form:"isActive"`
}
