// Package testutil starts an in-memory remote API and signs sessions into it.
package testutil

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prohmpiriya/ecom-storefront/internal/apiclient"
	"github.com/prohmpiriya/ecom-storefront/internal/catalog"
	"github.com/prohmpiriya/ecom-storefront/internal/credential"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/internal/mockapi"
	"github.com/prohmpiriya/ecom-storefront/internal/session"
)

const (
	AdminEmail    = "admin@test.local"
	AdminPassword = "Admin@12345"
	// UserPassword is used for every account registered through the helpers
	UserPassword = "Password1"
)

// Remote is a running mock API with a controllable clock
type Remote struct {
	API    *mockapi.Server
	HTTP   *httptest.Server
	Client *apiclient.Client

	mu  sync.Mutex
	now time.Time
}

// NewRemote starts a mock API; it is closed when the test ends
func NewRemote(t testing.TB) *Remote {
	t.Helper()
	r := &Remote{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	api, err := mockapi.New(mockapi.Config{
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		AdminEmail:    AdminEmail,
		AdminPassword: AdminPassword,
		BcryptCost:    bcrypt.MinCost,
		Now:           r.Now,
	})
	require.NoError(t, err)

	r.API = api
	r.HTTP = httptest.NewServer(api.Handler())
	t.Cleanup(r.HTTP.Close)
	r.Client = apiclient.New(apiclient.Config{BaseURL: r.HTTP.URL, Timeout: 5 * time.Second})
	return r
}

// Now is the remote's clock
func (r *Remote) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now
}

// Advance moves the remote's clock forward
func (r *Remote) Advance(d time.Duration) {
	r.mu.Lock()
	r.now = r.now.Add(d)
	r.mu.Unlock()
}

// NewSession returns an anonymous, bootstrapped session over a memory store
func (r *Remote) NewSession(t testing.TB, nav session.Navigator) *session.Manager {
	t.Helper()
	m := session.NewManager(session.Config{
		Store:     credential.NewStore(credential.NewMemoryBackend()),
		API:       catalog.NewAuthAPI(r.Client.Anonymous()),
		Navigator: nav,
	})
	m.Bootstrap(context.Background())
	return m
}

// SignIn logs email into a fresh session
func (r *Remote) SignIn(t testing.TB, email, password string) *session.Manager {
	t.Helper()
	m := r.NewSession(t, nil)
	_, err := m.Login(context.Background(), dto.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
	return m
}

// SignInAdmin logs the seeded admin into a fresh session
func (r *Remote) SignInAdmin(t testing.TB) *session.Manager {
	t.Helper()
	return r.SignIn(t, AdminEmail, AdminPassword)
}

// Register self-registers email with role and returns the signed-in session
func (r *Remote) Register(t testing.TB, email string, role domain.Role) *session.Manager {
	t.Helper()
	m := r.NewSession(t, nil)
	id, err := m.Register(context.Background(), dto.RegisterRequest{
		Email:     email,
		Password:  UserPassword,
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
	})
	require.NoError(t, err)
	require.NotNil(t, id)
	return m
}

// Products returns a product service bound to m
func (r *Remote) Products(m *session.Manager) *catalog.ProductService {
	return catalog.NewProductService(r.Client.Bind(m))
}

// Categories returns a category service bound to m
func (r *Remote) Categories(m *session.Manager) *catalog.CategoryService {
	return catalog.NewCategoryService(r.Client.Bind(m))
}
