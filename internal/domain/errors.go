package domain

import "errors"

// Domain errors
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNoIdentity       = errors.New("response carries no resolvable identity")
	ErrInvalidRole      = errors.New("invalid role")

	// Product errors
	ErrProductNotFound  = errors.New("product not found")
	ErrNotProductOwner  = errors.New("only the product owner or an admin may modify this product")
	ErrApprovalRequired = errors.New("only an admin may approve or reject products")

	// Category errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInactive = errors.New("category is not active")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is disabled")
	ErrInvalidOTP         = errors.New("invalid or expired otp")

	// Validation errors
	ErrInvalidProductName = errors.New("product name is required and must be at most 200 characters")
	ErrInvalidDescription = errors.New("description must be at most 2000 characters")
	ErrInvalidPrice       = errors.New("price must be at least 0.01")
	ErrInvalidStock       = errors.New("stock quantity cannot be negative")
	ErrInvalidCategoryID  = errors.New("category is required")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidProductName) ||
		errors.Is(err, ErrInvalidDescription) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidStock) ||
		errors.Is(err, ErrInvalidCategoryID) ||
		errors.Is(err, ErrCategoryInactive) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrEmailTaken)
}

// IsPermissionError checks if the error denies the caller an action
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotProductOwner) ||
		errors.Is(err, ErrApprovalRequired)
}
