package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prohmpiriya/ecom-storefront/internal/session"
	"github.com/prohmpiriya/ecom-storefront/pkg/middleware"
	"github.com/prohmpiriya/ecom-storefront/pkg/response"
)

const sessionKey = "storefront.session"

// SessionConfig configures the browser session cookie
type SessionConfig struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// redirectSink collects the navigation effect requested while serving one request
type redirectSink struct {
	mu   sync.Mutex
	path string
}

type sinkKey struct{}

func withRedirectSink(ctx context.Context) (context.Context, *redirectSink) {
	s := &redirectSink{}
	return context.WithValue(ctx, sinkKey{}, s), s
}

func (s *redirectSink) set(path string) {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
}

func (s *redirectSink) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// RedirectNavigator turns a session's navigation effect into a 303 on the
// request whose context carries it. Outside a request it does nothing.
func RedirectNavigator() session.Navigator {
	return session.NavigatorFunc(func(ctx context.Context, path string) {
		if s, ok := ctx.Value(sinkKey{}).(*redirectSink); ok {
			s.set(path)
		}
	})
}

// pendingRedirect returns the navigation requested so far in this request
func pendingRedirect(c *gin.Context) string {
	if s, ok := c.Request.Context().Value(sinkKey{}).(*redirectSink); ok {
		return s.get()
	}
	return ""
}

// Sessions binds every request to the session named by its cookie, creating
// one when the cookie is missing or malformed.
func Sessions(registry *session.Registry, cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.CookieName)
		if _, parseErr := uuid.Parse(sid); err != nil || parseErr != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CookieName, sid, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
		}

		ctx, sink := withRedirectSink(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)

		mgr, err := registry.Get(ctx, sid)
		if err != nil {
			response.InternalError(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, mgr)
		c.Set(middleware.ActorKey, sid)

		c.Next()

		// a navigation nobody answered, e.g. a teardown after a 401
		if path := sink.get(); path != "" && !c.Writer.Written() {
			c.Redirect(http.StatusSeeOther, path)
		}
	}
}

// Session returns the manager bound to the request, or nil
func Session(c *gin.Context) *session.Manager {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	mgr, _ := v.(*session.Manager)
	return mgr
}
