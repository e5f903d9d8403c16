package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/ecom-storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memRecordStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemRecordStore() *memRecordStore {
	return &memRecordStore{data: make(map[string]string)}
}

func (m *memRecordStore) GetString(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memRecordStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (m *memRecordStore) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (m *memRecordStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRequestID_GeneratesNew(t *testing.T) {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)

	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	headerID := w.Header().Get(RequestIDHeader)
	if headerID == "" {
		t.Error("Expected X-Request-ID header to be set")
	}
	if headerID != w.Body.String() {
		t.Errorf("Header ID (%s) should match body ID (%s)", headerID, w.Body.String())
	}
}

func TestRequestID_UsesExisting(t *testing.T) {
	existingID := "existing-request-id-123"

	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)

	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, existingID)
	r.ServeHTTP(w, req)

	if w.Body.String() != existingID {
		t.Errorf("Expected existing ID %s, got %s", existingID, w.Body.String())
	}
}

func TestLogger_DoesNotAlterResponse(t *testing.T) {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)

	r.Use(RequestID(), Logger(logger.Nop()))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)

	r.Use(CORS([]string{"http://shop.example.com"}))
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://shop.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func newIdempotentRouter(store RecordStore, calls *int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ActorKey, "session-1")
		c.Next()
	})
	r.Use(Idempotency(DefaultIdempotencyConfig(store)))
	r.POST("/products", func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusCreated, gin.H{"n": *calls})
	})
	r.POST("/boom", func(c *gin.Context) {
		*calls++
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newMemRecordStore(), &calls)

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"lamp"}`))
		req.Header.Set(IdempotencyKeyHeader, "k-1")
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	second := send()

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestIdempotency_KeyReusedWithDifferentBody(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newMemRecordStore(), &calls)

	for i, body := range []string{`{"name":"a"}`, `{"name":"b"}`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
		req.Header.Set(IdempotencyKeyHeader, "k-2")
		r.ServeHTTP(w, req)
		if i == 1 {
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		}
	}
	assert.Equal(t, 1, calls)
}

func TestIdempotency_InProgressConflict(t *testing.T) {
	store := newMemRecordStore()
	calls := 0
	r := newIdempotentRouter(store, &calls)

	// a processing record for the same request, as if a first submit were still running
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{}`))
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	c.Set(ActorKey, "session-1")
	hash := hashRequest(c, []byte(`{}`))
	trySetRecord(context.Background(), store, IdempotencyKeyPrefix+"session-1:k-3",
		&IdempotencyRecord{Key: "k-3", Status: StatusProcessing, RequestHash: hash}, time.Minute)

	w := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "k-3")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, calls)
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newMemRecordStore(), &calls)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ServerErrorIsNotCached(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newMemRecordStore(), &calls)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/boom", nil)
		req.Header.Set(IdempotencyKeyHeader, "k-4")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	}
	assert.Equal(t, 2, calls)
}

// racingStore loses every SetNX, as if another request took the key first,
// and never finds a record: the winner's record expired or is not readable
type racingStore struct {
	*memRecordStore
	setNXErr error
}

func (r *racingStore) GetString(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (r *racingStore) SetNX(context.Context, string, interface{}, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(false, r.setNXErr)
}

func TestIdempotency_LostKeyWithoutRecordConflicts(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(&racingStore{memRecordStore: newMemRecordStore()}, &calls)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "k-5")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, calls)
}

func TestIdempotency_StoreErrorFailsOpen(t *testing.T) {
	calls := 0
	store := &racingStore{memRecordStore: newMemRecordStore(), setNXErr: errors.New("connection refused")}
	r := newIdempotentRouter(store, &calls)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "k-6")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}
