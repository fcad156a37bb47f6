package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripplanner/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, h http.HandlerFunc, mut func(*Config)) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := Config{BaseURL: srv.URL}
	if mut != nil {
		mut(&cfg)
	}
	c, err := NewHTTPClient(cfg)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_Defaults(t *testing.T) {
	c, err := NewHTTPClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.timeout)
}

func TestNewHTTPClient_TrimsTrailingSlash(t *testing.T) {
	c, err := NewHTTPClient(Config{BaseURL: "https://api.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", c.BaseURL())
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
	_, err = NewHTTPClient(Config{BaseURL: "://nope"})
	assert.Error(t, err)
}

func TestLogin_SendsJSONAndDecodesPayload(t *testing.T) {
	var got models.LoginRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		writeJSON(w, http.StatusOK, models.AuthResponse{
			AccessToken: "tok",
			TokenType:   "bearer",
			User:        models.User{UserID: "1", Username: "alice", UserType: "registered"},
		})
	}, nil)

	resp, err := c.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, models.LoginRequest{Username: "alice", Password: "pw"}, got)
}

func TestBearer_AttachedWhenTokenPresent(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, models.User{UserID: "1"})
	}, func(cfg *Config) {
		cfg.TokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc"})
	})

	_, err := c.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", auth)
}

type errTokenSource struct{}

func (errTokenSource) Token() (*oauth2.Token, error) { return nil, errors.New("no session") }

func TestBearer_OmittedWhenSourceFailsOrEmpty(t *testing.T) {
	for name, src := range map[string]oauth2.TokenSource{
		"error": errTokenSource{},
		"empty": oauth2.StaticTokenSource(&oauth2.Token{}),
	} {
		t.Run(name, func(t *testing.T) {
			var auth string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
				writeJSON(w, http.StatusOK, models.HealthStatus{Status: "ok"})
			}, func(cfg *Config) { cfg.TokenSource = src })

			h, err := c.HealthCheck(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "ok", h.Status)
			assert.Empty(t, auth)
		})
	}
}

func TestUnauthorized_FiresHookOnEveryEndpoint(t *testing.T) {
	ctx := context.Background()
	calls := map[string]func(c *HTTPClient) error{
		"login": func(c *HTTPClient) error {
			_, err := c.Login(ctx, models.LoginRequest{})
			return err
		},
		"register": func(c *HTTPClient) error {
			_, err := c.Register(ctx, models.RegisterRequest{})
			return err
		},
		"me": func(c *HTTPClient) error {
			_, err := c.GetCurrentUser(ctx)
			return err
		},
		"update": func(c *HTTPClient) error {
			_, err := c.UpdateProfile(ctx, models.UserPatch{})
			return err
		},
		"passwd": func(c *HTTPClient) error {
			_, err := c.ChangePassword(ctx, models.ChangePasswordRequest{})
			return err
		},
		"logout": func(c *HTTPClient) error {
			_, err := c.Logout(ctx)
			return err
		},
		"guest": func(c *HTTPClient) error {
			_, err := c.CreateGuestSession(ctx)
			return err
		},
		"plan": func(c *HTTPClient) error {
			_, err := c.CreateTripPlan(ctx, models.TripPlanRequest{})
			return err
		},
		"health": func(c *HTTPClient) error {
			_, err := c.HealthCheck(ctx)
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			var hits atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			}, func(cfg *Config) {
				cfg.OnUnauthorized = func(context.Context) { hits.Add(1) }
			})

			err := call(c)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.Equal(t, "Could not validate credentials", err.Error())
			assert.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestNon401_DoesNotFireHook(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "forbidden"})
	}, func(cfg *Config) {
		cfg.OnUnauthorized = func(context.Context) { hits.Add(1) }
	})

	_, err := c.GetCurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, hits.Load())
}

func TestErrorMessagePreference(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantKind Kind
	}{
		{name: "detail string", status: 400, body: `{"detail":"Username already exists"}`, wantMsg: "Username already exists", wantKind: KindValidation},
		{name: "detail wins over error_message", status: 400, body: `{"detail":"d","error_message":"e"}`, wantMsg: "d", wantKind: KindValidation},
		{name: "validation list", status: 422, body: `{"detail":[{"loc":["body","username"],"msg":"field required"},{"msg":"too short"}]}`, wantMsg: "field required; too short", wantKind: KindValidation},
		{name: "error_message envelope", status: 500, body: `{"error_code":500,"error_message":"Internal server error","data":null}`, wantMsg: "Internal server error", wantKind: KindServer},
		{name: "empty body", status: 502, body: ``, wantMsg: "request failed with status code 502", wantKind: KindServer},
		{name: "non-json body", status: 503, body: `<html>bad gateway</html>`, wantMsg: "request failed with status code 503", wantKind: KindServer},
		{name: "conflict", status: 409, body: `{"detail":"User already registered"}`, wantMsg: "User already registered", wantKind: KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			_, err := c.Register(context.Background(), models.RegisterRequest{Username: "a", Password: "b"})
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "/api/v1/auth/register", apiErr.Path)
			assert.NotEmpty(t, apiErr.RequestID)
		})
	}
}

func TestCreateTripPlan_CancelAbortsInFlight(t *testing.T) {
	started := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	begin := time.Now()
	_, err := c.CreateTripPlan(ctx, models.TripPlanRequest{Destination: "Paris"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(begin), 2*time.Second)
}

func TestTimeout_ClassifiedAsTimeoutAndNetwork(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })

	_, err := c.CreateTripPlan(context.Background(), models.TripPlanRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Contains(t, err.Error(), "timeout of 50ms exceeded")
}

func TestNetworkError_NoResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = c.HealthCheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.NotEmpty(t, err.Error())
}

func TestParseError_OnMalformedPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":`))
	}, nil)

	_, err := c.HealthCheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, "failed to decode response", err.Error())
}

func TestUpdateProfile_SendsOnlyPresentFields(t *testing.T) {
	bio := "hello"
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeJSON(w, http.StatusOK, models.User{UserID: "1", Username: "a", Bio: &bio})
	}, nil)

	u, err := c.UpdateProfile(context.Background(), models.UserPatch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"bio": "hello"}, raw)
	require.NotNil(t, u.Bio)
	assert.Equal(t, "hello", *u.Bio)
}

func TestUpdateProfile_EmptyPreferencesClearList(t *testing.T) {
	var body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		body = string(b)
		writeJSON(w, http.StatusOK, models.User{UserID: "1", Username: "a", TravelPreferences: []string{}})
	}, nil)

	_, err := c.UpdateProfile(context.Background(), models.UserPatch{TravelPreferences: []string{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"travel_preferences":[]}`, body)
}

func TestCreateTripPlan_BlankPreferencesSentAsArrays(t *testing.T) {
	var body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		body = string(b)
		writeJSON(w, http.StatusOK, models.TripPlanResponse{TripTitle: "Paris"})
	}, nil)

	_, err := c.CreateTripPlan(context.Background(), models.TripPlanRequest{
		Destination: "Paris", StartDate: "2025-01-01", EndDate: "2025-01-02", Budget: "moderate",
	})
	require.NoError(t, err)
	assert.Contains(t, body, `"preferences":[]`)
	assert.Contains(t, body, `"hotel_preferences":[]`)
	assert.NotContains(t, body, "null")
}

func TestEndpointsRouteToExpectedPaths(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{})
	}, nil)
	ctx := context.Background()

	_, _ = c.ChangePassword(ctx, models.ChangePasswordRequest{OldPassword: "a", NewPassword: "b"})
	_, _ = c.Logout(ctx)
	_, _ = c.CreateGuestSession(ctx)
	_, _ = c.CreateTripPlan(ctx, models.TripPlanRequest{})
	_, _ = c.HealthCheck(ctx)

	assert.Equal(t, []string{
		"POST /api/v1/auth/change-password",
		"POST /api/v1/auth/logout",
		"POST /api/v1/auth/guest",
		"POST /api/v1/trips/plan",
		"GET /health",
	}, seen)
}

func TestKindOf_NonAPIError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("x")))
	assert.Equal(t, "server", KindServer.String())
}
