// Package mockapi is an in-memory rendition of the storefront REST API. It
// backs local development and the remote side of integration tests.
package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/pkg/config"
	"github.com/prohmpiriya/ecom-storefront/pkg/logger"
	"github.com/prohmpiriya/ecom-storefront/pkg/middleware"
	"github.com/prohmpiriya/ecom-storefront/pkg/response"
)

const principalKey = "mockapi.principal"

// Config holds configuration for the mock API
type Config struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
	OTPTTL        time.Duration
	// SeedCategories are created active on startup
	SeedCategories []string
	Logger         *logger.Logger
	Now            func() time.Time
}

// Server is the mock API: a seeded store plus its gin routes
type Server struct {
	svc    *service
	router *gin.Engine
}

// New seeds the admin account and categories and builds the router
func New(cfg Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("mock api: JWT secret is required")
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.OTPTTL == 0 {
		cfg.OTPTTL = 10 * time.Minute
	}
	if cfg.SeedCategories == nil {
		cfg.SeedCategories = []string{"General", "Electronics", "Books"}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	svc := &service{
		store:  newMemoryStore(),
		tokens: &tokenIssuer{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL, now: cfg.Now},
		cfg:    &cfg,
		log:    cfg.Logger,
		now:    cfg.Now,
	}
	if err := svc.seed(); err != nil {
		return nil, err
	}

	s := &Server{svc: svc}
	s.router = s.routes()
	return s, nil
}

func (s *service) seed() error {
	if s.cfg.AdminEmail != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), s.cfg.BcryptCost)
		if err != nil {
			return fmt.Errorf("mock api: failed to hash admin password: %w", err)
		}
		if _, err := s.store.insertUser(account{
			User: domain.User{
				Email:     s.cfg.AdminEmail,
				FirstName: "Store",
				LastName:  "Admin",
				Role:      domain.RoleAdmin,
				IsActive:  true,
				CreatedAt: s.now(),
			},
			PasswordHash: hash,
		}); err != nil {
			return err
		}
	}
	for _, name := range s.cfg.SeedCategories {
		s.store.insertCategory(domain.Category{Name: name, IsActive: true, CreatedAt: s.now()})
	}
	return nil
}

// ConfigFrom maps the MOCK_API_* settings to a Config
func ConfigFrom(mc config.MockAPIConfig, log *logger.Logger) Config {
	return Config{
		JWTSecret:     mc.JWTSecret,
		TokenTTL:      mc.TokenTTL,
		AdminEmail:    mc.AdminEmail,
		AdminPassword: mc.AdminPassword,
		Logger:        log,
	}
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// LastOTP returns the outstanding password reset code for email
func (s *Server) LastOTP(email string) (string, bool) {
	return s.svc.store.peekOTP(email)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(s.svc.log), s.authenticate())

	h := &handler{svc: s.svc}
	admin := requireRoles(domain.RoleAdmin)
	staff := requireRoles(domain.RoleAdmin, domain.RoleSeller)

	auth := r.Group("/api/Auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
	}

	products := r.Group("/api/product")
	{
		products.GET("", h.ListProducts)
		products.GET("/approved", h.ListApproved)
		products.GET("/pending", h.ListPending)
		products.GET("/seller/:id", h.ListBySeller)
		products.GET("/:id", h.GetProduct)
		products.POST("", staff, h.CreateProduct)
		products.PUT("/:id", staff, h.UpdateProduct)
		products.DELETE("/:id", staff, h.DeleteProduct)
		products.POST("/approve", admin, h.Approve)
	}

	categories := r.Group("/api/productcategory")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.POST("", admin, h.CreateCategory)
		categories.PUT("/:id", admin, h.UpdateCategory)
		categories.DELETE("/:id", admin, h.DeleteCategory)
	}

	users := r.Group("/api/user", admin)
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/status", h.UpdateUserStatus)
	}

	return r
}

// authenticate resolves an optional bearer token. A token that is present but
// invalid, expired, or names a disabled account is rejected with 401.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Fail("Invalid authorization header"))
			return
		}

		p, err := s.svc.tokens.verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Fail("Invalid or expired token"))
			return
		}
		if acc, found := s.svc.store.userByID(p.UserID); !found || !acc.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Fail("Account is not active"))
			return
		}

		c.Set(principalKey, &p)
		c.Set(middleware.ActorKey, p.Identity.Email)
		c.Next()
	}
}

// requireRoles answers 401 without a caller and 403 for a caller outside roles
func requireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := callerOf(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Fail("Authentication required"))
			return
		}
		if !p.Identity.Role.In(roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Fail("You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

func callerOf(c *gin.Context) *principal {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	p, _ := v.(*principal)
	return p
}
