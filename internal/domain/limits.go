package domain

// Field limits shared by form validation and the mock API
const (
	MinPasswordLength    = 8
	MaxPasswordLength    = 100
	MaxNameLength        = 100
	MaxEmailLength       = 254
	MaxProductNameLength = 200
	MaxDescriptionLength = 2000
	MinProductPrice      = 0.01
	MinStockQuantity     = 0
)
