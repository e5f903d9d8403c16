package mockapi

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/internal/lifecycle"
	"github.com/prohmpiriya/ecom-storefront/pkg/logger"
	"github.com/prohmpiriya/ecom-storefront/pkg/telemetry"
)

// ErrSelfDeactivation is returned when an admin tries to disable their own account
var ErrSelfDeactivation = errors.New("cannot deactivate your own account")

// service implements the remote API's business rules over the memory store
type service struct {
	store  *memoryStore
	tokens *tokenIssuer
	cfg    *Config
	log    *logger.Logger
	now    func() time.Time
}

// --- auth ---

// register creates an account. Self-registration is limited to Customer and
// Seller and logs the new user in; an Admin caller may create any role and
// receives the profile without a token so their own session is untouched.
func (s *service) register(ctx context.Context, req dto.RegisterRequest, caller *principal) (*dto.LoginResponse, error) {
	_, span := telemetry.StartSpan(ctx, "mockapi.register")
	defer span.End()

	role, ok := domain.ParseRole(string(req.Role))
	if !ok {
		return nil, domain.ErrInvalidRole
	}
	byAdmin := caller != nil && caller.Identity.Role == domain.RoleAdmin
	if role == domain.RoleAdmin && !byAdmin {
		return nil, domain.ErrForbidden
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acc, err := s.store.insertUser(account{
		User: domain.User{
			Email:     strings.TrimSpace(req.Email),
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Role:      role,
			IsActive:  true,
			CreatedAt: s.now(),
		},
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user_id", acc.ID), attribute.String("role", role.String()))
	s.log.Info("account registered",
		zap.Int64("user_id", acc.ID),
		zap.String("role", role.String()),
		zap.Bool("by_admin", byAdmin),
	)

	if byAdmin {
		return &dto.LoginResponse{User: profileOf(acc.User)}, nil
	}
	return s.respondWithToken(acc.User)
}

func (s *service) login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	_, span := telemetry.StartSpan(ctx, "mockapi.login")
	defer span.End()

	acc, found := s.store.userByEmail(req.Email)
	if !found {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !acc.IsActive {
		return nil, domain.ErrUserInactive
	}

	span.SetAttributes(attribute.Int64("user_id", acc.ID))
	return s.respondWithToken(acc.User)
}

func (s *service) respondWithToken(u domain.User) (*dto.LoginResponse, error) {
	token, expiresAt, err := s.tokens.issue(u)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User:      profileOf(u),
	}, nil
}

func profileOf(u domain.User) *dto.ProfileData {
	return &dto.ProfileData{
		ID:        strconv.FormatInt(u.ID, 10),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
	}
}

// forgotPassword issues an OTP. Unknown emails succeed silently.
func (s *service) forgotPassword(ctx context.Context, email string) error {
	_, span := telemetry.StartSpan(ctx, "mockapi.forgotPassword")
	defer span.End()

	if _, found := s.store.userByEmail(email); !found {
		return nil
	}
	code, err := newOTP()
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.store.putOTP(email, code, s.now().Add(s.cfg.OTPTTL))
	// no mail transport in the mock; the code is only visible in the log
	s.log.Info("password reset otp issued", zap.String("email", email), zap.String("otp", code))
	return nil
}

func (s *service) resetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	_, span := telemetry.StartSpan(ctx, "mockapi.resetPassword")
	defer span.End()

	acc, found := s.store.userByEmail(req.Email)
	if !found || !s.store.takeOTP(req.Email, strings.TrimSpace(req.OTP), s.now()) {
		return domain.ErrInvalidOTP
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = s.store.updateUser(acc.ID, func(a *account) { a.PasswordHash = hash })
	return err
}

func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// --- products ---

func isAdmin(caller *principal) bool {
	return caller != nil && caller.Identity.Role == domain.RoleAdmin
}

func visibleToPublic(p *domain.Product) bool {
	return p.IsActive && p.IsApproved()
}

// seesAllStatuses reports whether caller sees pending and rejected products
func seesAllStatuses(caller *principal) bool {
	return caller != nil && (caller.Identity.Role == domain.RoleAdmin || caller.Identity.Role == domain.RoleSeller)
}

// listProducts returns every active product to Admin and Seller callers and
// only approved ones to everybody else
func (s *service) listProducts(caller *principal) []domain.Product {
	if seesAllStatuses(caller) {
		return s.store.listProducts(func(p *domain.Product) bool { return p.IsActive })
	}
	return s.listApproved()
}

func (s *service) listApproved() []domain.Product {
	return s.store.listProducts(visibleToPublic)
}

func (s *service) listPending(caller *principal) ([]domain.Product, error) {
	if caller == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if !isAdmin(caller) {
		return nil, domain.ErrForbidden
	}
	return s.store.listProducts(func(p *domain.Product) bool { return p.IsActive && p.IsPending() }), nil
}

// listBySeller shows a seller's full active history to admins and sellers
func (s *service) listBySeller(caller *principal, sellerID int64) []domain.Product {
	full := seesAllStatuses(caller)
	return s.store.listProducts(func(p *domain.Product) bool {
		if p.CreatedByUserID != sellerID {
			return false
		}
		return (full && p.IsActive) || visibleToPublic(p)
	})
}

// getProduct applies the listing visibility to a single product. Admins also
// see soft-deleted ones.
func (s *service) getProduct(caller *principal, id int64) (domain.Product, error) {
	p, found := s.store.product(id)
	if !found {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if visibleToPublic(&p) || isAdmin(caller) || (p.IsActive && seesAllStatuses(caller)) {
		return p, nil
	}
	return domain.Product{}, domain.ErrProductNotFound
}

func (s *service) createProduct(ctx context.Context, caller *principal, req dto.CreateProductRequest) (domain.Product, error) {
	_, span := telemetry.StartSpan(ctx, "mockapi.createProduct")
	defer span.End()

	if !lifecycle.CanCreate(&caller.Identity) {
		return domain.Product{}, domain.ErrForbidden
	}
	var category *domain.Category
	if c, found := s.store.category(req.CategoryID); found {
		category = &c
	}
	if err := lifecycle.ValidateCreate(req, category); err != nil {
		return domain.Product{}, err
	}

	now := s.now()
	p := s.store.insertProduct(func(id int64) domain.Product {
		return lifecycle.NewPending(id, req, *category, caller.UserID, caller.Identity.Email, now)
	})
	span.SetAttributes(attribute.Int64("product_id", p.ID))
	s.log.Info("product submitted", zap.Int64("product_id", p.ID), zap.String("owner", p.CreatedByEmail))
	return p, nil
}

func (s *service) updateProduct(ctx context.Context, caller *principal, id int64, req dto.UpdateProductRequest) (domain.Product, error) {
	_, span := telemetry.StartSpan(ctx, "mockapi.updateProduct")
	defer span.End()

	fields := dto.CreateProductRequest(req)
	if err := lifecycle.Validate(fields); err != nil {
		return domain.Product{}, err
	}
	category, found := s.store.category(req.CategoryID)
	if !found {
		return domain.Product{}, domain.ErrCategoryNotFound
	}

	now := s.now()
	return s.store.updateProduct(id, func(p *domain.Product) error {
		if !p.IsActive {
			return domain.ErrProductNotFound
		}
		if !lifecycle.CanModify(&caller.Identity, p) {
			return domain.ErrNotProductOwner
		}
		image := strings.TrimSpace(req.ImageURL)
		if image == "" {
			image = domain.DefaultImageURL
		}
		p.Name = strings.TrimSpace(req.Name)
		p.Description = req.Description
		p.Price = req.Price
		p.StockQuantity = req.StockQuantity
		p.ImageURL = image
		p.CategoryID = category.ID
		p.CategoryName = category.Name
		p.UpdatedAt = &now
		return nil
	})
}

// deleteProduct deactivates the product; the record is kept
func (s *service) deleteProduct(ctx context.Context, caller *principal, id int64) error {
	_, span := telemetry.StartSpan(ctx, "mockapi.deleteProduct")
	defer span.End()

	now := s.now()
	_, err := s.store.updateProduct(id, func(p *domain.Product) error {
		if !p.IsActive {
			return domain.ErrProductNotFound
		}
		if !lifecycle.CanModify(&caller.Identity, p) {
			return domain.ErrNotProductOwner
		}
		p.IsActive = false
		p.UpdatedAt = &now
		return nil
	})
	return err
}

func (s *service) decide(ctx context.Context, caller *principal, req dto.ApproveProductRequest) (domain.Product, error) {
	_, span := telemetry.StartSpan(ctx, "mockapi.decide")
	defer span.End()

	now := s.now()
	p, err := s.store.updateProduct(req.ProductID, func(p *domain.Product) error {
		if !p.IsActive {
			return domain.ErrProductNotFound
		}
		return lifecycle.Decide(p, req.Approved, &caller.Identity, caller.UserID, now)
	})
	if err != nil {
		return domain.Product{}, err
	}
	span.SetAttributes(attribute.String("status", string(p.Status)))
	s.log.Info("product decided",
		zap.Int64("product_id", p.ID),
		zap.String("status", string(p.Status)),
		zap.String("by", caller.Identity.Email),
	)
	return p, nil
}

// --- categories ---

func (s *service) createCategory(req dto.CreateCategoryRequest) domain.Category {
	return s.store.insertCategory(domain.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   s.now(),
	})
}

func (s *service) updateCategory(id int64, req dto.UpdateCategoryRequest) (domain.Category, error) {
	now := s.now()
	return s.store.updateCategory(id, func(c *domain.Category) {
		c.Name = strings.TrimSpace(req.Name)
		c.Description = req.Description
		c.IsActive = req.IsActive
		c.UpdatedAt = &now
	})
}

func (s *service) deleteCategory(id int64) error {
	now := s.now()
	_, err := s.store.updateCategory(id, func(c *domain.Category) {
		c.IsActive = false
		c.UpdatedAt = &now
	})
	return err
}

// --- users ---

func (s *service) getUser(id int64) (domain.User, error) {
	acc, found := s.store.userByID(id)
	if !found {
		return domain.User{}, domain.ErrUserNotFound
	}
	return acc.User, nil
}

func (s *service) updateUserStatus(caller *principal, req dto.UpdateUserStatusRequest) error {
	if caller.UserID == req.UserID && !req.IsActive {
		return ErrSelfDeactivation
	}
	_, err := s.store.updateUser(req.UserID, func(a *account) { a.IsActive = req.IsActive })
	return err
}
