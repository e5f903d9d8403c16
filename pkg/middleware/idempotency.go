package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/ecom-storefront/pkg/response"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency key
	IdempotencyKeyHeader = "X-Idempotency-Key"
	// ContextKeyIdempotencyKey is the context key for idempotency key
	ContextKeyIdempotencyKey = "idempotency_key"
	// ActorKey is the context key under which the session layer stores who is acting
	ActorKey = "actor"
	// DefaultIdempotencyTTL keeps completed records long enough to absorb double submits
	DefaultIdempotencyTTL = 5 * time.Minute
	// IdempotencyKeyPrefix is the Redis key prefix for idempotency records
	IdempotencyKeyPrefix = "storefront:idempotency:"
)

// IdempotencyStatus represents the status of an idempotency record
type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord stores the state of an idempotent request
type IdempotencyRecord struct {
	Key          string            `json:"key"`
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	ContentType  string            `json:"content_type"`
	Location     string            `json:"location,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// RecordStore is the subset of pkg/redis.Client the middleware needs
type RecordStore interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	Store RecordStore
	// TTL for completed records
	TTL time.Duration
	// TTL for processing records; bounds how long a crashed request blocks its key
	ProcessingTTL time.Duration
	// RequireKey rejects mutating requests that carry no key; otherwise they pass through
	RequireKey bool
	// Methods that are deduplicated
	Methods []string
}

// DefaultIdempotencyConfig returns default configuration
func DefaultIdempotencyConfig(store RecordStore) *IdempotencyConfig {
	return &IdempotencyConfig{
		Store:         store,
		TTL:           DefaultIdempotencyTTL,
		ProcessingTTL: 60 * time.Second,
		Methods:       []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}
}

// Idempotency replays the stored response for a repeated X-Idempotency-Key and
// answers 409 while the first request with that key is still running.
func Idempotency(config *IdempotencyConfig) gin.HandlerFunc {
	if config.ProcessingTTL == 0 {
		config.ProcessingTTL = 60 * time.Second
	}
	if config.TTL == 0 {
		config.TTL = DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		if !isMethodRequired(c.Request.Method, config.Methods) {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if config.RequireKey {
				c.AbortWithStatusJSON(http.StatusBadRequest, response.Fail("X-Idempotency-Key header is required"))
				return
			}
			c.Next()
			return
		}
		c.Set(ContextKeyIdempotencyKey, key)

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		requestHash := hashRequest(c, body)
		redisKey := IdempotencyKeyPrefix + GetActor(c) + ":" + key
		ctx := c.Request.Context()

		existing, err := getRecord(ctx, config.Store, redisKey)
		if err != nil {
			// fail open
			c.Next()
			return
		}
		if existing != nil {
			replay(c, existing, requestHash)
			return
		}

		record := &IdempotencyRecord{
			Key:         key,
			Status:      StatusProcessing,
			RequestHash: requestHash,
			CreatedAt:   time.Now(),
		}
		acquired, err := trySetRecord(ctx, config.Store, redisKey, record, config.ProcessingTTL)
		if err != nil {
			// fail open
			c.Next()
			return
		}
		if !acquired {
			// another request holds the key
			if existing, _ = getRecord(ctx, config.Store, redisKey); existing != nil {
				replay(c, existing, requestHash)
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, response.Fail("A request with this idempotency key is already being processed"))
			return
		}

		rw := &idempotencyResponseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rw

		c.Next()

		status := rw.Status()
		if status >= http.StatusInternalServerError {
			// let the caller retry
			config.Store.Del(context.WithoutCancel(ctx), redisKey)
			return
		}

		now := time.Now()
		record.Status = StatusCompleted
		record.ResponseCode = status
		record.ResponseBody = rw.body.String()
		record.ContentType = rw.Header().Get("Content-Type")
		record.Location = rw.Header().Get("Location")
		record.CompletedAt = &now
		_ = saveRecord(context.WithoutCancel(ctx), config.Store, redisKey, record, config.TTL)
	}
}

func replay(c *gin.Context, record *IdempotencyRecord, requestHash string) {
	if record.RequestHash != requestHash {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, response.Fail("Idempotency key already used with a different request"))
		return
	}
	if record.Status == StatusProcessing {
		c.AbortWithStatusJSON(http.StatusConflict, response.Fail("A request with this idempotency key is already being processed"))
		return
	}

	if record.Location != "" {
		c.Header("Location", record.Location)
	}
	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Data(record.ResponseCode, contentType, []byte(record.ResponseBody))
	c.Abort()
}

// GetIdempotencyKey extracts idempotency key from gin context
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	key, exists := c.Get(ContextKeyIdempotencyKey)
	if !exists {
		return "", false
	}
	k, ok := key.(string)
	return k, ok
}

// GetActor returns the actor stored by the session layer, or ""
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}

// idempotencyResponseWriter captures response for caching
type idempotencyResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *idempotencyResponseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func isMethodRequired(method string, methods []string) bool {
	for _, m := range methods {
		if method == m {
			return true
		}
	}
	return false
}

func hashRequest(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	h.Write([]byte(GetActor(c)))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func getRecord(ctx context.Context, store RecordStore, key string) (*IdempotencyRecord, error) {
	raw, found, err := store.GetString(ctx, key)
	if err != nil || !found {
		return nil, err
	}

	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// trySetRecord reports whether the key was free; err is set only when the store failed
func trySetRecord(ctx context.Context, store RecordStore, key string, record *IdempotencyRecord, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, string(data), ttl).Result()
}

func saveRecord(ctx context.Context, store RecordStore, key string, record *IdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, string(data), ttl).Err()
}
