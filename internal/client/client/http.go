package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripplanner/internal/client/models"
	"github.com/dmitrijs2005/tripplanner/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the backend address used when none is configured.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout is generous because plan generation is slow.
	DefaultTimeout = 5 * time.Minute

	// RequestIDHeader carries a per-request correlation id to the backend.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 1 << 20
)

const (
	pathLogin          = "/api/v1/auth/login"
	pathRegister       = "/api/v1/auth/register"
	pathMe             = "/api/v1/auth/me"
	pathChangePassword = "/api/v1/auth/change-password"
	pathLogout         = "/api/v1/auth/logout"
	pathGuest          = "/api/v1/auth/guest"
	pathTripPlan       = "/api/v1/trips/plan"
	pathHealth         = "/health"
)

// Config configures an HTTPClient.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Timeout bounds every request. Zero means DefaultTimeout.
	Timeout time.Duration
	// TokenSource supplies the bearer token. Nil or an empty token sends
	// requests without Authorization.
	TokenSource oauth2.TokenSource
	// OnUnauthorized runs whenever any endpoint answers 401.
	OnUnauthorized func(ctx context.Context)
	Logger         logging.Logger
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// HTTPClient implements Client over the backend's REST API.
type HTTPClient struct {
	baseURL        *url.URL
	timeout        time.Duration
	http           *http.Client
	onUnauthorized func(ctx context.Context)
	log            logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds the request pipeline described by cfg.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	return &HTTPClient{
		baseURL: base,
		timeout: timeout,
		http: &http.Client{
			Transport: &bearerTransport{source: cfg.TokenSource, base: rt},
		},
		onUnauthorized: cfg.OnUnauthorized,
		log:            log.With("component", "http-client"),
	}, nil
}

// BaseURL returns the configured backend address.
func (c *HTTPClient) BaseURL() string { return c.baseURL.String() }

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, pathLogin, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, pathRegister, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, pathMe, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPut, pathMe, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.do(ctx, http.MethodPost, pathChangePassword, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.do(ctx, http.MethodPost, pathLogout, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateGuestSession(ctx context.Context) (*models.GuestSession, error) {
	var out models.GuestSession
	if err := c.do(ctx, http.MethodPost, pathGuest, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTripPlan asks the backend to generate an itinerary. Generation can
// take minutes; cancel ctx to abandon it.
func (c *HTTPClient) CreateTripPlan(ctx context.Context, req models.TripPlanRequest) (*models.TripPlanResponse, error) {
	var out models.TripPlanResponse
	if err := c.do(ctx, http.MethodPost, pathTripPlan, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) HealthCheck(ctx context.Context) (*models.HealthStatus, error) {
	var out models.HealthStatus
	if err := c.do(ctx, http.MethodGet, pathHealth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one round trip. A nil body sends no payload; a nil out
// discards the response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	reqID := uuid.NewString()
	fail := func(e *APIError) error {
		e.Method, e.Path, e.RequestID = method, path, reqID
		return c.fail(ctx, e)
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fail(&APIError{Kind: KindParse, Message: "failed to encode request", Cause: err})
		}
		payload = bytes.NewReader(b)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL.String()+path, payload)
	if err != nil {
		return fail(&APIError{Kind: KindNetwork, Message: pickMessage(err.Error()), Cause: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	c.log.Debug(ctx, "request", "method", method, "path", path, "request_id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(c.transportError(ctx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e := &APIError{
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: pickMessage(serverMessage(raw), fmt.Sprintf("request failed with status code %d", resp.StatusCode)),
		}
		if e.Kind == KindAuth && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return fail(e)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := reqCtx.Err(); ctxErr != nil {
			return fail(c.transportError(ctx, err))
		}
		return fail(&APIError{
			Kind:    KindParse,
			Status:  resp.StatusCode,
			Message: "failed to decode response",
			Cause:   err,
		})
	}
	return nil
}

func (c *HTTPClient) fail(ctx context.Context, e *APIError) error {
	c.log.Warn(ctx, "request failed",
		"method", e.Method,
		"path", e.Path,
		"status", e.Status,
		"kind", e.Kind.String(),
		"request_id", e.RequestID,
		"error", e.Message,
	)
	return e
}

// transportError classifies a failure that produced no HTTP response.
// parent is the caller's context; the per-request deadline lives below it.
func (c *HTTPClient) transportError(parent context.Context, err error) *APIError {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return &APIError{Kind: KindCanceled, Message: ErrCanceled.Error(), Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{Kind: KindTimeout, Message: fmt.Sprintf("timeout of %s exceeded", c.timeout), Cause: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &APIError{Kind: KindTimeout, Message: pickMessage(err.Error()), Cause: err}
	}
	return &APIError{Kind: KindNetwork, Message: pickMessage(err.Error()), Cause: err}
}

// serverMessage extracts the display text from an error body. The backend
// uses {"detail": "..."} for handled errors, {"detail": [{"msg": ...}]} for
// request validation and {"error_message": "..."} from its global handler.
func serverMessage(raw []byte) string {
	var env struct {
		Detail       json.RawMessage `json:"detail"`
		ErrorMessage string          `json:"error_message"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &env) != nil {
		return ""
	}
	return pickDetail(env.Detail, env.ErrorMessage)
}

func pickDetail(detail json.RawMessage, fallback string) string {
	if len(detail) > 0 {
		var s string
		if json.Unmarshal(detail, &s) == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(detail, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return fallback
}
