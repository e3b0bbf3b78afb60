package httpapi

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/server/config"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAndNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, healthResponse{Status: "OK", Message: "DefComm API is running"}, decode[healthResponse](t, rec))

	rec = env.do(t, http.MethodGet, "/api/nowhere?x=1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found: /api/nowhere?x=1", message(t, rec))

	rec = env.do(t, http.MethodPatch, "/api/groups", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env = newTestEnv(t, func(c *config.Config) { c.MetricsEnabled = true })
	env.do(t, http.MethodGet, "/", nil, nil)
	rec = env.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "defcomm_http_requests_total")
	assert.Contains(t, body, `route="GET /{$}"`)
}

func TestMiddleware_HeadersAndRequestID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", id)
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))
}

func TestMiddleware_CORS(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", env.config.FrontendURL)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, env.config.FrontendURL, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_RecoversPanic(t *testing.T) {
	env := newTestEnv(t)
	h := env.server.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "Internal Server Error", resp.Message)
	assert.Contains(t, resp.Stack, "boom")

	env = newTestEnv(t, func(c *config.Config) { c.Env = config.EnvProduction })
	h = env.server.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, decode[errorResponse](t, rec).Stack)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.ShutdownTimeout = time.Second })

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Serve(ctx, l) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + l.Addr().String() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

// TestEndToEnd walks a new operative from registration to reading a
// colleague's message over a real listener with a cookie jar.
func TestEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "command", models.RoleHQ, models.StatusApproved)

	ts := httptest.NewServer(env.server.Handler())
	defer ts.Close()

	newClient := func() *http.Client {
		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		return &http.Client{Jar: jar}
	}
	call := func(c *http.Client, method, path, body string) *http.Response {
		req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}
	read := func(resp *http.Response, v any) {
		require.NoError(t, jsonDecode(resp, v))
	}

	agent := newClient()
	resp := call(agent, http.MethodPost, "/api/auth/register", `{"username":"alpha","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var a userResponse
	read(resp, &a)
	assert.False(t, a.IsApproved)

	resp = call(agent, http.MethodGet, "/api/groups", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	hq := newClient()
	resp = call(hq, http.MethodPost, "/api/auth/login", `{"username":"command","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(hq, http.MethodPut, "/api/users/"+itoa(a.ID)+"/approve", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(agent, http.MethodPost, "/api/auth/login", `{"username":"alpha","password":"secret123"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	read(resp, &a)
	assert.True(t, a.IsApproved)

	resp = call(hq, http.MethodPost, "/api/groups", `{"name":"G","members":[`+itoa(a.ID)+`]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var g groupResponse
	read(resp, &g)

	messages := "/api/groups/" + itoa(g.ID) + "/messages"
	resp = call(agent, http.MethodPost, messages, `{"encryptedText":"C"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(hq, http.MethodGet, messages+"?page=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page messagePageResponse
	read(resp, &page)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "C", page.Messages[0].EncryptedText)
	require.NotNil(t, page.Messages[0].Sender)
	assert.Equal(t, "alpha", page.Messages[0].Sender.Username)

	resp = call(agent, http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = call(agent, http.MethodGet, "/api/auth/check", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
