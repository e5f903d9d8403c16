package handler

import (
	"github.com/prohmpiriya/ecom-storefront/internal/apiclient"
	"github.com/prohmpiriya/ecom-storefront/internal/catalog"
	"github.com/prohmpiriya/ecom-storefront/internal/lifecycle"
	"github.com/prohmpiriya/ecom-storefront/internal/session"
)

// Backend builds remote services bound to a session
type Backend struct {
	client *apiclient.Client
}

// NewBackend wraps the shared transport
func NewBackend(client *apiclient.Client) *Backend {
	return &Backend{client: client}
}

// scope is the set of services acting as one session
type scope struct {
	products   *catalog.ProductService
	categories *catalog.CategoryService
	users      *catalog.UserService
	auth       *catalog.AuthAPI
	workflow   *lifecycle.Workflow
}

func (b *Backend) scope(mgr *session.Manager) *scope {
	api := b.client.Bind(mgr)
	s := &scope{
		products:   catalog.NewProductService(api),
		categories: catalog.NewCategoryService(api),
		users:      catalog.NewUserService(api),
		auth:       catalog.NewAuthAPI(api),
	}
	s.workflow = lifecycle.NewWorkflow(s.products, s.categories, mgr)
	return s
}

// anonymousAuth is for endpoints that must never touch a session
func (b *Backend) anonymousAuth() *catalog.AuthAPI {
	return catalog.NewAuthAPI(b.client.Anonymous())
}
