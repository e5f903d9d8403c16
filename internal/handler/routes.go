package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/ecom-storefront/internal/navigation"
)

// Handlers groups the web tier handlers
type Handlers struct {
	Auth    *AuthHandler
	Product *ProductHandler
	Admin   *AdminHandler
	Health  *HealthHandler
}

// RouteConfig carries the cross-cutting middleware of the page routes
type RouteConfig struct {
	Sessions gin.HandlerFunc
	// Idempotency guards mutating product routes; nil when Redis is not configured
	Idempotency gin.HandlerFunc
}

// chain drops nil handlers
func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// RegisterRoutes mounts the probes and every page of the route table. Each
// page carries the guard its route table entry names.
func RegisterRoutes(r gin.IRouter, h *Handlers, cfg RouteConfig) {
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)

	web := r.Group("", chain(cfg.Sessions)...)
	idem := cfg.Idempotency

	web.GET("/", h.Product.Root)

	// auth
	web.GET(navigation.Login, guard(navigation.Login), h.Auth.LoginPage)
	web.POST(navigation.Login, guard(navigation.Login), h.Auth.Login)
	web.GET(navigation.Register, guard(navigation.Register), h.Auth.RegisterPage)
	web.POST(navigation.Register, guard(navigation.Register), h.Auth.Register)
	web.GET(navigation.ForgotPassword, guard(navigation.ForgotPassword), h.Auth.ForgotPasswordPage)
	web.POST(navigation.ForgotPassword, guard(navigation.ForgotPassword), h.Auth.ForgotPassword)
	web.GET(navigation.ResetPassword, guard(navigation.ResetPassword), h.Auth.ResetPasswordPage)
	web.POST(navigation.ResetPassword, guard(navigation.ResetPassword), h.Auth.ResetPassword)
	web.GET(navigation.AdminRegister, guard(navigation.AdminRegister), h.Auth.AdminRegisterPage)
	web.POST(navigation.AdminRegister, guard(navigation.AdminRegister), h.Auth.AdminRegister)
	web.POST("/auth/logout", h.Auth.Logout)
	web.GET(navigation.Unauthorized, guard(navigation.Unauthorized), h.Auth.UnauthorizedPage)

	// catalog
	web.GET(navigation.Home, guard(navigation.Home), h.Product.Home)
	web.GET(navigation.Products, guard(navigation.Products), h.Product.List)
	web.GET(navigation.ProductCreate, guard(navigation.ProductCreate), h.Product.CreatePage)
	web.POST(navigation.ProductCreate, chain(guard(navigation.ProductCreate), idem, h.Product.Create)...)
	web.GET(navigation.ProductEdit, guard(navigation.ProductEdit), h.Product.EditPage)
	web.POST(navigation.ProductEdit, chain(guard(navigation.ProductEdit), idem, h.Product.Edit)...)
	web.GET(navigation.ProductDetail, guard(navigation.ProductDetail), h.Product.Detail)
	web.POST(navigation.ProductDetail+"/delete", chain(guard(navigation.ProductEdit), idem, h.Product.Delete)...)
	web.GET(navigation.SellerDashboard, guard(navigation.SellerDashboard), h.Product.SellerDashboard)

	// admin
	web.GET(navigation.AdminDashboard, guard(navigation.AdminDashboard), h.Admin.Dashboard)
	web.GET(navigation.AdminUsers, guard(navigation.AdminUsers), h.Admin.Users)
	web.POST(navigation.AdminUsers+"/:id/status", guard(navigation.AdminUsers), h.Admin.UpdateUserStatus)
	web.GET(navigation.AdminCategories, guard(navigation.AdminCategories), h.Admin.Categories)
	web.POST(navigation.AdminCategories, guard(navigation.AdminCategories), h.Admin.CreateCategory)
	web.POST(navigation.AdminCategories+"/:id", guard(navigation.AdminCategories), h.Admin.UpdateCategory)
	web.POST(navigation.AdminCategories+"/:id/delete", guard(navigation.AdminCategories), h.Admin.DeleteCategory)
	web.GET(navigation.AdminApproval, guard(navigation.AdminApproval), h.Admin.Approval)
	web.POST(navigation.AdminApproval+"/:id", chain(guard(navigation.AdminApproval), idem, h.Admin.Decide)...)
}
