package di

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/ecom-storefront/internal/apiclient"
	"github.com/prohmpiriya/ecom-storefront/internal/catalog"
	"github.com/prohmpiriya/ecom-storefront/internal/credential"
	"github.com/prohmpiriya/ecom-storefront/internal/handler"
	"github.com/prohmpiriya/ecom-storefront/internal/session"
	"github.com/prohmpiriya/ecom-storefront/pkg/config"
	"github.com/prohmpiriya/ecom-storefront/pkg/logger"
	"github.com/prohmpiriya/ecom-storefront/pkg/middleware"
	"github.com/prohmpiriya/ecom-storefront/pkg/redis"
)

// Container holds all dependencies of the storefront web tier
type Container struct {
	// Infrastructure
	Redis *redis.Client
	API   *apiclient.Client

	// Sessions
	Registry *session.Registry

	// Handlers
	Handlers *handler.Handlers

	routes handler.RouteConfig
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config *config.Config
	// Redis is optional; without it sessions and idempotency stay in memory
	Redis *redis.Client
	// API defaults to a client for Config.API
	API    *apiclient.Client
	Logger *logger.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	c := &Container{
		Redis: cfg.Redis,
		API:   cfg.API,
	}
	if c.API == nil {
		c.API = apiclient.New(apiclient.Config{
			BaseURL: cfg.Config.API.BaseURL,
			Timeout: cfg.Config.API.Timeout,
			Logger:  log,
		})
	}

	// Initialize sessions
	authAPI := catalog.NewAuthAPI(c.API.Anonymous())
	navigator := handler.RedirectNavigator()
	c.Registry = session.NewRegistry(func(sid string) *session.Manager {
		return session.NewManager(session.Config{
			Store:     credential.NewStore(c.backendFor(cfg.Config.Session, sid)),
			API:       authAPI,
			Navigator: navigator,
			Logger:    log.With(zap.String("session", shortID(sid))),
		})
	}, cfg.Config.Session.TTL, log)

	// Initialize handlers
	backend := handler.NewBackend(c.API)
	c.Handlers = &handler.Handlers{
		Auth:    handler.NewAuthHandler(backend),
		Product: handler.NewProductHandler(backend),
		Admin:   handler.NewAdminHandler(backend),
		Health:  handler.NewHealthHandler(c.Redis, c.API),
	}

	c.routes = handler.RouteConfig{
		Sessions: handler.Sessions(c.Registry, handler.SessionConfig{
			CookieName: cfg.Config.Session.CookieName,
			Secure:     cfg.Config.Session.CookieSecure,
			MaxAge:     cfg.Config.Session.TTL,
		}),
	}
	if c.Redis != nil {
		c.routes.Idempotency = middleware.Idempotency(middleware.DefaultIdempotencyConfig(c.Redis))
	}

	return c
}

// backendFor picks the credential backend of session sid
func (c *Container) backendFor(cfg config.SessionConfig, sid string) credential.Backend {
	if cfg.Backend == config.SessionBackendRedis && c.Redis != nil {
		return credential.NewRedisBackend(c.Redis, cfg.KeyPrefix+sid, cfg.TTL)
	}
	return credential.NewMemoryBackend()
}

// RegisterRoutes mounts the web tier on r
func (c *Container) RegisterRoutes(r gin.IRouter) {
	handler.RegisterRoutes(r, c.Handlers, c.routes)
}

func shortID(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
