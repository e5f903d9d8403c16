package di_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/ecom-storefront/internal/di"
	"github.com/prohmpiriya/ecom-storefront/internal/navigation"
	"github.com/prohmpiriya/ecom-storefront/internal/testutil"
	"github.com/prohmpiriya/ecom-storefront/pkg/config"
)

func TestNewContainer_MemorySessions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	remote := testutil.NewRemote(t)

	cfg := &config.Config{}
	cfg.API.BaseURL = remote.HTTP.URL
	cfg.Session = config.SessionConfig{
		CookieName: "sf_session",
		Backend:    config.SessionBackendMemory,
		TTL:        time.Hour,
		KeyPrefix:  "storefront:session:",
	}

	c := di.NewContainer(&di.ContainerConfig{Config: cfg})
	require.NotNil(t, c.API)
	require.NotNil(t, c.Registry)
	require.NotNil(t, c.Handlers)

	r := gin.New()
	c.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, navigation.AdminDashboard, nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, c.Registry.Len())
}
