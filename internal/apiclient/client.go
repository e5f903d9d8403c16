// Package apiclient is the REST transport to the remote storefront API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/prohmpiriya/ecom-storefront/pkg/logger"
	"github.com/prohmpiriya/ecom-storefront/pkg/telemetry"
)

// Binding attaches a call to a client session: it supplies the bearer token
// and is told when the server rejects it.
type Binding interface {
	Token(ctx context.Context) string
	HandleUnauthorized(ctx context.Context)
}

// Requester performs envelope-decoded calls. out receives the envelope's data.
type Requester interface {
	Do(ctx context.Context, method, path string, body, out interface{}) error
}

// Config configures the shared transport
type Config struct {
	BaseURL string
	Timeout time.Duration // 0 keeps the transport default
	Logger  *logger.Logger
}

// Client is the shared, session-independent transport
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// New creates a transport for baseURL
func New(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	return &Client{http: rc, log: log}
}

// Bind returns a Requester carrying b's token; a 401 tears b's session down
func (c *Client) Bind(b Binding) *Bound {
	return &Bound{client: c, binding: b}
}

// Anonymous returns a Requester that sends no token and ignores 401 side effects.
// Auth endpoints use it so a failed login never ends an existing session.
func (c *Client) Anonymous() *Bound {
	return &Bound{client: c}
}

// Ping checks that the remote API answers at all
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/api/product/approved")
	if err != nil {
		return fmt.Errorf("remote api unreachable: %w", err)
	}
	if resp.StatusCode() >= 500 {
		return fmt.Errorf("remote api unhealthy: HTTP %d", resp.StatusCode())
	}
	return nil
}

// Bound is a Requester tied to one Binding
type Bound struct {
	client  *Client
	binding Binding
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
}

// Do sends the request and decodes the envelope. Every failure comes back as *Error.
func (b *Bound) Do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, span := telemetry.StartSpan(ctx, "apiclient."+method+" "+path)
	defer span.End()

	req := b.client.http.R().
		SetContext(ctx).
		SetHeaders(telemetry.InjectHeaders(ctx))
	if b.binding != nil {
		if token := b.binding.Token(ctx); token != "" {
			req.SetAuthToken(token)
		}
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		apiErr := &Error{Kind: KindNetworkUnreachable, Method: method, Path: path, Err: err}
		telemetry.RecordError(span, apiErr)
		b.client.log.Warn("Remote API unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return apiErr
	}

	status := resp.StatusCode()
	env, decodeErr := decodeEnvelope(resp.Body())

	if status < 200 || status > 299 {
		apiErr := &Error{Kind: kindForStatus(status), Status: status, Method: method, Path: path}
		if decodeErr == nil {
			apiErr.Message = env.Message
			apiErr.Errors = env.Errors
		}
		telemetry.RecordError(span, apiErr)
		b.client.log.Debug("Remote API call failed",
			zap.String("method", method), zap.String("path", path), zap.Int("status", status))

		if apiErr.Kind == KindUnauthorized && b.binding != nil {
			b.binding.HandleUnauthorized(ctx)
		}
		return apiErr
	}

	if decodeErr != nil {
		apiErr := &Error{Kind: KindUnexpected, Status: status, Method: method, Path: path, Err: decodeErr}
		telemetry.RecordError(span, apiErr)
		return apiErr
	}
	if !env.Success {
		apiErr := &Error{Kind: KindValidationFailed, Status: status, Method: method, Path: path, Message: env.Message, Errors: env.Errors}
		telemetry.RecordError(span, apiErr)
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		apiErr := &Error{Kind: KindUnexpected, Status: status, Method: method, Path: path, Err: fmt.Errorf("decode data: %w", err)}
		telemetry.RecordError(span, apiErr)
		return apiErr
	}
	return nil
}

func decodeEnvelope(body []byte) (envelope, error) {
	var env envelope
	if len(bytes.TrimSpace(body)) == 0 {
		return env, errors.New("empty response body")
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// Get is shorthand for Do with GET
func Get(ctx context.Context, r Requester, path string, out interface{}) error {
	return r.Do(ctx, http.MethodGet, path, nil, out)
}

// Post is shorthand for Do with POST
func Post(ctx context.Context, r Requester, path string, body, out interface{}) error {
	return r.Do(ctx, http.MethodPost, path, body, out)
}

// Put is shorthand for Do with PUT
func Put(ctx context.Context, r Requester, path string, body, out interface{}) error {
	return r.Do(ctx, http.MethodPut, path, body, out)
}

// Delete is shorthand for Do with DELETE
func Delete(ctx context.Context, r Requester, path string) error {
	return r.Do(ctx, http.MethodDelete, path, nil, nil)
}
