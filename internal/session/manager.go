// Package session owns the current-user state of one client session.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/prohmpiriya/ecom-storefront/internal/claims"
	"github.com/prohmpiriya/ecom-storefront/internal/credential"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/internal/dto"
	"github.com/prohmpiriya/ecom-storefront/internal/navigation"
	"github.com/prohmpiriya/ecom-storefront/pkg/logger"
	"github.com/prohmpiriya/ecom-storefront/pkg/telemetry"
)

// AuthAPI is the remote half of login and registration
type AuthAPI interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error)
}

// Navigator performs the "go to path" effect for whoever is driving the session
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) { f(ctx, path) }

// Decoder recovers an identity from a token
type Decoder func(token string) (domain.Identity, bool)

// Config wires a Manager
type Config struct {
	Store     *credential.Store
	API       AuthAPI
	Navigator Navigator
	Decoder   Decoder // defaults to claims.Decode
	Logger    *logger.Logger
}

// Manager holds one session's identity. Reads are concurrent; bootstrap,
// login, register and logout run one at a time.
type Manager struct {
	store  *credential.Store
	api    AuthAPI
	nav    Navigator
	decode Decoder
	log    *logger.Logger

	writeMu sync.Mutex
	current *feed
}

// NewManager creates an anonymous session manager; call Bootstrap to restore state
func NewManager(cfg Config) *Manager {
	m := &Manager{
		store:   cfg.Store,
		api:     cfg.API,
		nav:     cfg.Navigator,
		decode:  cfg.Decoder,
		log:     cfg.Logger,
		current: newFeed(),
	}
	if m.decode == nil {
		m.decode = claims.Decode
	}
	if m.log == nil {
		m.log = logger.Nop()
	}
	if m.nav == nil {
		m.nav = NavigatorFunc(func(context.Context, string) {})
	}
	return m
}

// Bootstrap restores the identity from the cached profile, falling back to the
// token's claims. It never fails: anything unrecoverable leaves the session
// anonymous with an empty credential store.
func (m *Manager) Bootstrap(ctx context.Context) {
	ctx, span := telemetry.StartSpan(ctx, "session.bootstrap")
	defer span.End()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	token, err := m.store.GetToken(ctx)
	if err != nil {
		m.log.Warn("Bootstrap could not read token", zap.Error(err))
		m.current.publish(nil)
		return
	}
	if token == "" {
		m.discard(ctx)
		return
	}

	cached, err := m.store.GetUser(ctx)
	if err != nil {
		m.log.Warn("Bootstrap could not read cached identity", zap.Error(err))
	}
	if cached != nil && cached.Role.Valid() {
		m.current.publish(cached)
		return
	}

	decoded, ok := m.decode(token)
	if !ok {
		m.log.Info("Bootstrap found a token without a resolvable identity; session is anonymous")
		m.discard(ctx)
		return
	}

	if err := m.store.SetUser(ctx, decoded); err != nil {
		m.log.Warn("Bootstrap could not cache decoded identity", zap.Error(err))
	}
	m.current.publish(&decoded)
	m.log.Debug(fmt.Sprintf("Bootstrap restored %s session from token claims", decoded.Role))
}

func (m *Manager) discard(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn("Failed to clear credential store", zap.Error(err))
	}
	m.current.publish(nil)
}

// Login authenticates against the remote API and establishes the session.
// On any failure the session is left as it was.
func (m *Manager) Login(ctx context.Context, req dto.LoginRequest) (domain.Identity, error) {
	ctx, span := telemetry.StartSpan(ctx, "session.login")
	defer span.End()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	resp, err := m.api.Login(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return domain.Identity{}, err
	}

	id, err := m.establish(ctx, resp)
	if err != nil {
		telemetry.RecordError(span, err)
		return domain.Identity{}, err
	}
	m.log.Info("User signed in", zap.String("role", string(id.Role)))
	return id, nil
}

// Register creates an account. When the response carries a token the session
// is established exactly as Login does and the identity is returned; otherwise
// the session is untouched and the identity is nil.
func (m *Manager) Register(ctx context.Context, req dto.RegisterRequest) (*domain.Identity, error) {
	ctx, span := telemetry.StartSpan(ctx, "session.register")
	defer span.End()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	resp, err := m.api.Register(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if resp == nil || resp.Token == "" {
		return nil, nil
	}

	id, err := m.establish(ctx, resp)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	m.log.Info("User registered and signed in", zap.String("role", string(id.Role)))
	return &id, nil
}

// establish persists and publishes the identity carried by resp. Caller holds writeMu.
func (m *Manager) establish(ctx context.Context, resp *dto.LoginResponse) (domain.Identity, error) {
	if resp == nil || resp.Token == "" {
		return domain.Identity{}, fmt.Errorf("login response without token: %w", domain.ErrNoIdentity)
	}

	id, ok := m.identityFrom(resp)
	if !ok {
		return domain.Identity{}, domain.ErrNoIdentity
	}

	if err := m.store.Save(ctx, resp.Token, id); err != nil {
		return domain.Identity{}, fmt.Errorf("persist session: %w", err)
	}
	m.current.publish(&id)
	return id, nil
}

// identityFrom layers response fields over decoded claims: top-level fields
// beat the nested user object, which beats the token.
func (m *Manager) identityFrom(resp *dto.LoginResponse) (domain.Identity, bool) {
	id, _ := m.decode(resp.Token)
	role := string(id.Role)

	if u := resp.User; u != nil {
		overlay(&id.ID, u.ID)
		overlay(&id.Email, u.Email)
		overlay(&id.FirstName, u.FirstName)
		overlay(&id.LastName, u.LastName)
		overlay(&role, u.Role)
	}
	overlay(&id.Email, resp.Email)
	overlay(&id.FirstName, resp.FirstName)
	overlay(&id.LastName, resp.LastName)
	overlay(&role, resp.Role)

	r, ok := domain.ParseRole(role)
	if !ok {
		return domain.Identity{}, false
	}
	id.Role = r
	return id, true
}

func overlay(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// Logout clears the credentials, publishes the anonymous identity and
// navigates to the login entry point. Safe to call with no session.
func (m *Manager) Logout(ctx context.Context) error {
	return m.teardown(ctx, "logout")
}

// HandleUnauthorized tears the session down after the remote API answered 401
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	_ = m.teardown(ctx, "unauthorized")
}

func (m *Manager) teardown(ctx context.Context, reason string) error {
	m.writeMu.Lock()
	err := m.store.Clear(ctx)
	wasSignedIn := m.current.load() != nil
	m.current.publish(nil)
	m.writeMu.Unlock()

	if err != nil {
		m.log.Error("Failed to clear credential store", zap.String("reason", reason), zap.Error(err))
	} else if wasSignedIn {
		m.log.Info("Session ended", zap.String("reason", reason))
	}

	m.nav.Navigate(ctx, navigation.Login)
	return err
}

// IsAuthenticated reports whether a token is stored. A read error counts as no token.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	token, err := m.store.GetToken(ctx)
	return err == nil && token != ""
}

// Token returns the stored bearer token, or ""
func (m *Manager) Token(ctx context.Context) string {
	token, err := m.store.GetToken(ctx)
	if err != nil {
		return ""
	}
	return token
}

// Current returns a copy of the current identity, or nil
func (m *Manager) Current() *domain.Identity {
	return m.current.load()
}

// CurrentRole returns the role of the current identity
func (m *Manager) CurrentRole() (domain.Role, bool) {
	id := m.current.load()
	if id == nil {
		return "", false
	}
	return id.Role, true
}

// HasRole reports whether the current identity has role
func (m *Manager) HasRole(role domain.Role) bool {
	r, ok := m.CurrentRole()
	return ok && r == role
}

// Subscribe streams identity changes, starting with the current value.
// Values arrive in publish order and the latest one is always delivered, but
// a reader that falls more than a few values behind loses the oldest queued
// ones: intermediate transitions may be skipped. Call Current for the present
// state. The channel closes after cancel is called.
func (m *Manager) Subscribe() (<-chan *domain.Identity, func()) {
	return m.current.subscribe()
}
