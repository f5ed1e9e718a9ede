package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/workdesk/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type apiClient struct {
	t   *testing.T
	url string
}

func (c *apiClient) do(method, path, token string, body any) (int, envelope) {
	c.t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.url+path, rdr)
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func (c *apiClient) login(email, password string) (token, userID string) {
	c.t.Helper()
	status, env := c.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, status, env.Error)

	var out struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &out))
	return out.AccessToken, out.User.ID
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// newTestServer runs the full stack the serve command builds, against a
// temporary database configured through the environment.
func newTestServer(t *testing.T) *apiClient {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "workdesk.db"))
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("VAPID_PUBLIC_KEY", "")
	t.Setenv("VAPID_PRIVATE_KEY", "")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "admin-password")

	ctx := context.Background()
	a, err := bootstrap(ctx)
	require.NoError(t, err)
	t.Cleanup(a.close)
	require.NoError(t, ensureConfiguredAdmin(ctx, a))

	go a.hub.Run()
	t.Cleanup(a.hub.Shutdown)

	limiters := initRateLimiters()
	t.Cleanup(limiters.Close)

	mux := http.NewServeMux()
	initRoutes(mux, initHandlers(a.svcs, limiters, a.hub, a.policy, a.loc, a.cfg), a.svcs.Auth, a.repos.User, a.reg)

	srv := httptest.NewServer(middleware.Recover(middleware.AccessLog(a.reg, mux)))
	t.Cleanup(srv.Close)

	return &apiClient{t: t, url: srv.URL}
}

func TestHealthAndAuthGuard(t *testing.T) {
	c := newTestServer(t)

	status, env := c.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = c.do(http.MethodGet, "/api/employees", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = c.do(http.MethodGet, "/api/employees", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = c.do(http.MethodGet, "/api/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "endpoint not found", env.Error)
}

func TestSubmissionApprovalOverHTTP(t *testing.T) {
	c := newTestServer(t)
	adminToken, adminID := c.login("admin@example.com", "admin-password")

	status, env := c.do(http.MethodPost, "/api/employees", adminToken, map[string]any{
		"email":      "lead@example.com",
		"password":   "lead-password",
		"full_name":  "Team Lead",
		"role":       "team_lead",
		"manager_id": adminID,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	lead := decodeData[struct {
		ID string `json:"id"`
	}](t, env)

	status, env = c.do(http.MethodPost, "/api/employees", adminToken, map[string]any{
		"email":        "emp@example.com",
		"password":     "emp-password",
		"full_name":    "Employee",
		"role":         "employee",
		"team_lead_id": lead.ID,
		"manager_id":   adminID,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	empToken, _ := c.login("emp@example.com", "emp-password")
	leadToken, _ := c.login("lead@example.com", "lead-password")

	// Employees cannot list the directory.
	status, _ = c.do(http.MethodGet, "/api/employees", empToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = c.do(http.MethodPost, "/api/submissions", empToken, map[string]any{
		"title":     "Quarterly report",
		"link":      "https://example.com/report",
		"work_date": "2026-10-16",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	sub := decodeData[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, env)
	assert.Equal(t, "Pending Team Lead Approval", sub.Status)

	// Employees hold no approval permission at all.
	status, _ = c.do(http.MethodPost, "/api/requests/submission/"+sub.ID+"/approve", empToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = c.do(http.MethodGet, "/api/approvals/pending", leadToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	pending := decodeData[struct {
		Total int `json:"total"`
	}](t, env)
	assert.Equal(t, 1, pending.Total)

	status, env = c.do(http.MethodPost, "/api/requests/submission/"+sub.ID+"/approve", leadToken, map[string]string{"comment": "looks good"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "Pending Manager Approval", decodeData[struct {
		Status string `json:"status"`
	}](t, env).Status)

	// The lead already acted; the manager stage is not theirs.
	status, _ = c.do(http.MethodPost, "/api/requests/submission/"+sub.ID+"/approve", leadToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = c.do(http.MethodPost, "/api/requests/submission/"+sub.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "Approved", decodeData[struct {
		Status string `json:"status"`
	}](t, env).Status)

	status, env = c.do(http.MethodGet, "/api/requests/submission/"+sub.ID+"/history", empToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	history := decodeData[[]json.RawMessage](t, env)
	assert.GreaterOrEqual(t, len(history), 2)

	status, env = c.do(http.MethodGet, "/api/notifications/unread-count", empToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)

	status, _ = c.do(http.MethodPost, "/api/requests/bogus/"+sub.ID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
