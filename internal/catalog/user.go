package catalog

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/ecom-storefront/internal/apiclient"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
)

const userPath = "/api/user"

// UserService wraps the admin user-management endpoints
type UserService struct {
	api apiclient.Requester
}

func NewUserService(api apiclient.Requester) *UserService {
	return &UserService{api: api}
}

// List returns all users, newest first
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return apiclient.GetList[domain.User](ctx, s.api, userPath)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := apiclient.Get(ctx, s.api, fmt.Sprintf("%s/%d", userPath, id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateStatus enables or disables an account
func (s *UserService) UpdateStatus(ctx context.Context, userID int64, isActive bool) error {
	req := dto.UpdateUserStatusRequest{UserID: userID, IsActive: isActive}
	return apiclient.Put(ctx, s.api, userPath+"/status", req, nil)
}
