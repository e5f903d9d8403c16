package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/ecom-storefront/internal/claims"
	"github.com/prohmpiriya/ecom-storefront/internal/credential"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/internal/navigation"
)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoginResponse), args.Error(1)
}

func (m *MockAuthAPI) Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoginResponse), args.Error(1)
}

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingNavigator) Navigate(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingNavigator) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

type fixture struct {
	backend *credential.MemoryBackend
	store   *credential.Store
	api     *MockAuthAPI
	nav     *recordingNavigator
	mgr     *Manager
}

func newFixture() *fixture {
	f := &fixture{
		backend: credential.NewMemoryBackend(),
		api:     new(MockAuthAPI),
		nav:     &recordingNavigator{},
	}
	f.store = credential.NewStore(f.backend)
	f.mgr = NewManager(Config{Store: f.store, API: f.api, Navigator: f.nav})
	return f
}

func mintToken(t *testing.T, mc jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func sellerToken(t *testing.T) string {
	return mintToken(t, jwt.MapClaims{
		claims.ClaimNameIdentifier: "5",
		claims.ClaimEmail:          "token@shop.com",
		claims.ClaimGivenName:      "Tok",
		claims.ClaimSurname:        "En",
		claims.ClaimRole:           "Seller",
	})
}

func TestBootstrap_TokenOnlyDecodesWithoutNetwork(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.store.SetToken(ctx, sellerToken(t)))

	f.mgr.Bootstrap(ctx)

	assert.True(t, f.mgr.IsAuthenticated(ctx))
	assert.True(t, f.mgr.HasRole(domain.RoleSeller))
	role, ok := f.mgr.CurrentRole()
	assert.True(t, ok)
	assert.Equal(t, domain.RoleSeller, role)

	cached, err := f.store.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "token@shop.com", cached.Email)

	f.api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	f.api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestBootstrap_PrefersCachedIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	cached := domain.Identity{Email: "cached@shop.com", Role: domain.RoleAdmin}
	require.NoError(t, f.store.Save(ctx, sellerToken(t), cached))

	f.mgr.Bootstrap(ctx)

	require.NotNil(t, f.mgr.Current())
	assert.Equal(t, cached, *f.mgr.Current())
}

func TestBootstrap_NoTokenIsAnonymous(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.store.SetUser(ctx, domain.Identity{Email: "stale@shop.com", Role: domain.RoleAdmin}))

	f.mgr.Bootstrap(ctx)

	assert.False(t, f.mgr.IsAuthenticated(ctx))
	assert.Nil(t, f.mgr.Current())
	assert.Equal(t, 0, f.backend.Len())
}

func TestBootstrap_UnresolvableTokenFailsClosed(t *testing.T) {
	ctx := context.Background()
	for name, token := range map[string]string{
		"malformed": "onlyonepart",
		"no role":   mintToken(t, jwt.MapClaims{"email": "x@shop.com"}),
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			require.NoError(t, f.store.SetToken(ctx, token))

			f.mgr.Bootstrap(ctx)

			assert.Nil(t, f.mgr.Current())
			assert.False(t, f.mgr.IsAuthenticated(ctx))
		})
	}
}

func TestLogin_ResponseFieldsOverrideToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	token := sellerToken(t)
	req := dto.LoginRequest{Email: "a@shop.com", Password: "secret123"}

	f.api.On("Login", mock.Anything, req).Return(&dto.LoginResponse{
		Token:     token,
		Email:     "a@shop.com",
		FirstName: "Alice",
		Role:      "Admin",
	}, nil)

	ch, cancel := f.mgr.Subscribe()
	defer cancel()
	assert.Nil(t, <-ch)

	id, err := f.mgr.Login(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "5", id.ID)
	assert.Equal(t, "a@shop.com", id.Email)
	assert.Equal(t, "Alice", id.FirstName)
	assert.Equal(t, "En", id.LastName)
	assert.Equal(t, domain.RoleAdmin, id.Role)

	published := <-ch
	require.NotNil(t, published)
	assert.Equal(t, id, *published)

	stored, _ := f.store.GetToken(ctx)
	assert.Equal(t, token, stored)
	cached, _ := f.store.GetUser(ctx)
	assert.Equal(t, id, *cached)

	f.api.AssertExpectations(t)
}

func TestLogin_NestedUserAccepted(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.api.On("Login", mock.Anything, mock.Anything).Return(&dto.LoginResponse{
		Token: "opaque-token",
		User:  &dto.ProfileData{ID: "9", Email: "n@shop.com", FirstName: "Ned", Role: "customer"},
	}, nil)

	id, err := f.mgr.Login(ctx, dto.LoginRequest{Email: "n@shop.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, id.Role)
	assert.Equal(t, "9", id.ID)
}

func TestLogin_FailureLeavesSessionUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	existing := domain.Identity{Email: "old@shop.com", Role: domain.RoleSeller}
	require.NoError(t, f.store.Save(ctx, "old-token", existing))
	f.mgr.Bootstrap(ctx)

	apiErr := errors.New("invalid credentials")
	f.api.On("Login", mock.Anything, mock.Anything).Return(nil, apiErr).Once()
	f.api.On("Login", mock.Anything, mock.Anything).Return(&dto.LoginResponse{Token: "t", Role: "Wizard"}, nil).Once()

	_, err := f.mgr.Login(ctx, dto.LoginRequest{Email: "x@shop.com", Password: "bad"})
	assert.ErrorIs(t, err, apiErr)

	_, err = f.mgr.Login(ctx, dto.LoginRequest{Email: "x@shop.com", Password: "bad"})
	assert.ErrorIs(t, err, domain.ErrNoIdentity)

	assert.Equal(t, existing, *f.mgr.Current())
	tok, _ := f.store.GetToken(ctx)
	assert.Equal(t, "old-token", tok)
}

func TestRegister_AutoLoginOnlyWithToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	req := dto.RegisterRequest{Email: "new@shop.com", Password: "password1", FirstName: "N", LastName: "U", Role: domain.RoleCustomer}

	f.api.On("Register", mock.Anything, req).Return(&dto.LoginResponse{}, nil).Once()
	id, err := f.mgr.Register(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.False(t, f.mgr.IsAuthenticated(ctx))

	f.api.On("Register", mock.Anything, req).Return(&dto.LoginResponse{
		Token: "tok", Email: "new@shop.com", Role: "Customer",
	}, nil).Once()
	id, err = f.mgr.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, domain.RoleCustomer, id.Role)
	assert.True(t, f.mgr.IsAuthenticated(ctx))
}

func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.store.Save(ctx, "tok", domain.Identity{Email: "a@shop.com", Role: domain.RoleAdmin}))
	f.mgr.Bootstrap(ctx)

	require.NoError(t, f.mgr.Logout(ctx))
	assert.Equal(t, 0, f.backend.Len())
	assert.Nil(t, f.mgr.Current())

	require.NoError(t, f.mgr.Logout(ctx))
	assert.Equal(t, 0, f.backend.Len())
	assert.False(t, f.mgr.IsAuthenticated(ctx))

	assert.Equal(t, []string{navigation.Login, navigation.Login}, f.nav.Paths())
}

func TestHandleUnauthorized_TearsDown(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.store.Save(ctx, "tok", domain.Identity{Email: "a@shop.com", Role: domain.RoleSeller}))
	f.mgr.Bootstrap(ctx)

	f.mgr.HandleUnauthorized(ctx)

	assert.False(t, f.mgr.IsAuthenticated(ctx))
	assert.Nil(t, f.mgr.Current())
	assert.Equal(t, []string{navigation.Login}, f.nav.Paths())
}

func TestSubscribe_OrderedDelivery(t *testing.T) {
	f := newFixture()
	ch, cancel := f.mgr.Subscribe()

	emails := []string{"1@x.com", "2@x.com", "3@x.com"}
	for _, e := range emails {
		f.mgr.current.publish(&domain.Identity{Email: e, Role: domain.RoleCustomer})
	}
	f.mgr.current.publish(nil)
	cancel()

	var got []string
	for id := range ch {
		if id == nil {
			got = append(got, "")
			continue
		}
		got = append(got, id.Email)
	}
	assert.Equal(t, []string{"", "1@x.com", "2@x.com", "3@x.com", ""}, got)
}

func TestSubscribe_SlowReaderKeepsLatest(t *testing.T) {
	f := newFixture()
	ch, cancel := f.mgr.Subscribe()

	for i := 0; i < subscriberBuffer*3; i++ {
		f.mgr.current.publish(&domain.Identity{Email: "x@x.com", FirstName: string(rune('a' + i)), Role: domain.RoleCustomer})
	}
	cancel()

	var last *domain.Identity
	prev := rune(0)
	received := 0
	for id := range ch {
		if id != nil {
			r := rune(id.FirstName[0])
			assert.Greater(t, r, prev, "values must arrive in publish order")
			prev = r
		}
		last = id
		received++
	}
	require.NotNil(t, last)
	assert.Equal(t, string(rune('a'+subscriberBuffer*3-1)), last.FirstName)
	// the oldest values were dropped for the unread channel
	assert.LessOrEqual(t, received, subscriberBuffer)
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	f := newFixture()
	f.mgr.current.publish(&domain.Identity{Email: "a@x.com", Role: domain.RoleSeller})

	c := f.mgr.Current()
	c.Role = domain.RoleAdmin

	assert.True(t, f.mgr.HasRole(domain.RoleSeller))
}
