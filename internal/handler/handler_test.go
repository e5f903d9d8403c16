package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/ecom-storefront/internal/catalog"
	"github.com/prohmpiriya/ecom-storefront/internal/credential"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/handler"
	"github.com/prohmpiriya/ecom-storefront/internal/navigation"
	"github.com/prohmpiriya/ecom-storefront/internal/session"
	"github.com/prohmpiriya/ecom-storefront/internal/testutil"
)

const cookieName = "sf_session"

func init() {
	gin.SetMode(gin.TestMode)
}

type app struct {
	router *gin.Engine
	remote *testutil.Remote
}

func newApp(t *testing.T) *app {
	t.Helper()
	remote := testutil.NewRemote(t)

	auth := catalog.NewAuthAPI(remote.Client.Anonymous())
	nav := handler.RedirectNavigator()
	registry := session.NewRegistry(func(string) *session.Manager {
		return session.NewManager(session.Config{
			Store:     credential.NewStore(credential.NewMemoryBackend()),
			API:       auth,
			Navigator: nav,
		})
	}, 0, nil)

	backend := handler.NewBackend(remote.Client)
	h := &handler.Handlers{
		Auth:    handler.NewAuthHandler(backend),
		Product: handler.NewProductHandler(backend),
		Admin:   handler.NewAdminHandler(backend),
		Health:  handler.NewHealthHandler(nil, remote.Client),
	}

	r := gin.New()
	handler.RegisterRoutes(r, h, handler.RouteConfig{
		Sessions: handler.Sessions(registry, handler.SessionConfig{CookieName: cookieName, MaxAge: time.Hour}),
	})
	return &app{router: r, remote: remote}
}

// browser replays the session cookie it was given
type browser struct {
	t      *testing.T
	app    *app
	cookie *http.Cookie
}

func (a *app) browser(t *testing.T) *browser {
	return &browser{t: t, app: a}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}

	w := httptest.NewRecorder()
	b.app.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			b.cookie = c
		}
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, path, form)
}

func (b *browser) login(email, password string) {
	b.t.Helper()
	w := b.post(navigation.Login, url.Values{"email": {email}, "password": {password}})
	require.Equal(b.t, http.StatusSeeOther, w.Code, w.Body.String())
}

func (b *browser) register(email string, role domain.Role) {
	b.t.Helper()
	w := b.post(navigation.Register, url.Values{
		"email":     {email},
		"password":  {testutil.UserPassword},
		"firstName": {"Web"},
		"lastName":  {string(role)},
		"role":      {string(role)},
	})
	require.Equal(b.t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(b.t, navigation.DashboardFor(role), w.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	a := newApp(t)

	w := a.browser(t).get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = a.browser(t).get("/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"api":"healthy"`)
	assert.Contains(t, w.Body.String(), `"redis":"not configured"`)
}

func TestSessions_IssuesCookie(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)

	b.get(navigation.Login)
	require.NotNil(t, b.cookie)
	assert.True(t, b.cookie.HttpOnly)
	first := b.cookie.Value

	b.get(navigation.Login)
	assert.Equal(t, first, b.cookie.Value)
}

func TestGuard_AnonymousGoesToLoginWithReturnURL(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)

	w := b.get(navigation.AdminUsers)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login?returnUrl=%2Fadmin%2Fusers", w.Header().Get("Location"))

	// refused form posts carry no return path
	w = b.post(navigation.ProductCreate, url.Values{"name": {"Lamp"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.Login, w.Header().Get("Location"))
}

func TestGuard_WrongRoleGoesToUnauthorized(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	b.register("seller@shop.test", domain.RoleSeller)

	w := b.get(navigation.AdminApproval)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.Unauthorized, w.Header().Get("Location"))

	w = b.get(navigation.Unauthorized)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), navigation.SellerDashboard)

	w = b.get(navigation.SellerDashboard)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_FollowsReturnURL(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)

	w := b.post(navigation.Login+"?returnUrl=%2Fadmin%2Fusers", url.Values{
		"email":    {testutil.AdminEmail},
		"password": {testutil.AdminPassword},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.AdminUsers, w.Header().Get("Location"))

	w = b.get(navigation.AdminUsers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testutil.AdminEmail)

	// already signed in
	w = b.get(navigation.Login)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.AdminDashboard, w.Header().Get("Location"))
}

func TestLogin_WrongPassword(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)

	w := b.post(navigation.Login, url.Values{"email": {testutil.AdminEmail}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = b.post(navigation.Login, url.Values{"email": {"not-an-email"}, "password": {"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_AdminRoleRefused(t *testing.T) {
	a := newApp(t)

	w := a.browser(t).post(navigation.Register, url.Values{
		"email":     {"boss@shop.test"},
		"password":  {testutil.UserPassword},
		"firstName": {"B"},
		"lastName":  {"Oss"},
		"role":      {string(domain.RoleAdmin)},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	b.login(testutil.AdminEmail, testutil.AdminPassword)

	w := b.post("/auth/logout", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.Login, w.Header().Get("Location"))

	w = b.get(navigation.Home)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login?returnUrl=%2Fhome", w.Header().Get("Location"))
}

func TestExpiredToken_EndsSession(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	b.register("seller@shop.test", domain.RoleSeller)

	a.remote.Advance(2 * time.Hour)

	w := b.get(navigation.Products)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.Login, w.Header().Get("Location"))

	w = b.get(navigation.SellerDashboard)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login?returnUrl=%2Fseller%2Fdashboard", w.Header().Get("Location"))
}

func firstCategory(t *testing.T, remote *testutil.Remote) int64 {
	t.Helper()
	categories, err := remote.Categories(remote.SignInAdmin(t)).ListActive(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	return categories[0].ID
}

func TestProductApprovalFlow(t *testing.T) {
	a := newApp(t)
	categoryID := firstCategory(t, a.remote)

	seller := a.browser(t)
	seller.register("seller@shop.test", domain.RoleSeller)

	w := seller.post(navigation.ProductCreate, url.Values{
		"name":          {"Desk Lamp"},
		"description":   {"Warm light"},
		"price":         {"24.5"},
		"stockQuantity": {"3"},
		"categoryId":    {strconv.FormatInt(categoryID, 10)},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/products/"), location)
	id := strings.TrimPrefix(location, "/products/")

	w = seller.get(location)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(domain.StatusPending))

	customer := a.browser(t)
	customer.register("buyer@shop.test", domain.RoleCustomer)
	w = customer.get(location)
	assert.Equal(t, http.StatusNotFound, w.Code)

	admin := a.browser(t)
	admin.login(testutil.AdminEmail, testutil.AdminPassword)

	w = admin.get(navigation.AdminApproval)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Desk Lamp")

	w = admin.post(navigation.AdminApproval+"/"+id, url.Values{"approved": {"true"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.AdminApproval, w.Header().Get("Location"))
	assert.Equal(t, string(domain.StatusApproved), w.Header().Get("X-Product-Status"))

	w = customer.get(location)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(domain.StatusApproved))

	// a customer cannot reach the edit page at all
	w = customer.get("/products/edit/" + id)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.Unauthorized, w.Header().Get("Location"))
}

func TestProductEdit_OtherSellerRefused(t *testing.T) {
	a := newApp(t)
	categoryID := firstCategory(t, a.remote)

	owner := a.browser(t)
	owner.register("owner@shop.test", domain.RoleSeller)
	w := owner.post(navigation.ProductCreate, url.Values{
		"name":          {"Mug"},
		"price":         {"8"},
		"stockQuantity": {"10"},
		"categoryId":    {strconv.FormatInt(categoryID, 10)},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	location := w.Header().Get("Location")
	id := strings.TrimPrefix(location, "/products/")

	admin := a.browser(t)
	admin.login(testutil.AdminEmail, testutil.AdminPassword)
	w = admin.post(navigation.AdminApproval+"/"+id, url.Values{"approved": {"true"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	other := a.browser(t)
	other.register("other@shop.test", domain.RoleSeller)

	w = other.get("/products/edit/" + id)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.Unauthorized, w.Header().Get("Location"))

	w = other.post(location+"/delete", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = owner.get("/products/edit/" + id)
	assert.Equal(t, http.StatusOK, w.Code)

	w = owner.post(location+"/delete", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.Products, w.Header().Get("Location"))
}
