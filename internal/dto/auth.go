package dto

import "github.com/prohmpiriya/ecom-storefront/internal/domain"

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email,max=254"`
	Password string `json:"password" form:"password" binding:"required,max=100"`
}

// LoginResponse is the payload of a successful login or auto-login registration.
// Some API versions nest the profile under "user"; explicit top-level fields win.
type LoginResponse struct {
	Token     string       `json:"token"`
	Email     string       `json:"email,omitempty"`
	FirstName string       `json:"firstName,omitempty"`
	LastName  string       `json:"lastName,omitempty"`
	Role      string       `json:"role,omitempty"`
	ExpiresAt string       `json:"expiresAt,omitempty"`
	User      *ProfileData `json:"user,omitempty"`
}

// ProfileData is the nested user object some responses carry
type ProfileData struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email     string      `json:"email" form:"email" binding:"required,email,max=254"`
	Password  string      `json:"password" form:"password" binding:"required,min=8,max=100"`
	FirstName string      `json:"firstName" form:"firstName" binding:"required,max=100"`
	LastName  string      `json:"lastName" form:"lastName" binding:"required,max=100"`
	Role      domain.Role `json:"role" form:"role" binding:"required,oneof=Admin Seller Customer"`
}

// ForgotPasswordRequest starts the OTP reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" binding:"required,email,max=254"`
}

// ResetPasswordRequest completes the OTP reset flow
type ResetPasswordRequest struct {
	OTP         string `json:"otp" form:"otp" binding:"required"`
	Email       string `json:"email" form:"email" binding:"required,email,max=254"`
	NewPassword string `json:"newPassword" form:"newPassword" binding:"required,min=8,max=100"`
}
