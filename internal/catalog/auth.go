package catalog

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/prohmpiriya/ecom-storefront/internal/apiclient"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
)

const authPath = "/api/Auth"

// AuthAPI wraps /api/Auth. It must be built over an anonymous requester so a
// rejected login does not end the current session.
type AuthAPI struct {
	api apiclient.Requester
}

func NewAuthAPI(api apiclient.Requester) *AuthAPI {
	return &AuthAPI{api: api}
}

func (a *AuthAPI) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	if err := apiclient.Post(ctx, a.api, authPath+"/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account; the response carries a token only when the
// server signs the new user in immediately
func (a *AuthAPI) Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	var raw json.RawMessage
	if err := apiclient.Post(ctx, a.api, authPath+"/register", req, &raw); err != nil {
		return nil, err
	}

	var resp dto.LoginResponse
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		// anything else (a bare id or message) means no auto-login
		_ = json.Unmarshal(trimmed, &resp)
	}
	return &resp, nil
}

// ForgotPassword asks the server to email a reset OTP
func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) error {
	return apiclient.Post(ctx, a.api, authPath+"/forgot-password", dto.ForgotPasswordRequest{Email: email}, nil)
}

// ResetPassword completes the OTP flow
func (a *AuthAPI) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	return apiclient.Post(ctx, a.api, authPath+"/reset-password", req, nil)
}
