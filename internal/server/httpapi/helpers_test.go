package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/logging"
	"github.com/dmitrijs2005/defcomm/internal/server/auth"
	"github.com/dmitrijs2005/defcomm/internal/server/config"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/defcomm/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secret123"

type testEnv struct {
	server *Server
	repos  *repomanager.MemoryRepositoryManager
	issuer *auth.Issuer
	config *config.Config
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	for _, m := range mutate {
		m(cfg)
	}

	issuer, err := auth.NewIssuer(cfg.SecretKey, cfg.SessionTTL)
	require.NoError(t, err)

	rm := repomanager.NewMemoryRepositoryManager()
	gs := services.NewGroupService(rm)
	srv := NewServer(cfg, logging.Nop{}, Services{
		Auth:     services.NewAuthService(rm, issuer),
		Users:    services.NewUserService(rm),
		Groups:   gs,
		Messages: services.NewMessageService(rm, gs),
		Admin:    services.NewAdminService(rm),
	})

	return &testEnv{server: srv, repos: rm, issuer: issuer, config: cfg}
}

// seed stores an account whose password is testPassword.
func (e *testEnv) seed(t *testing.T, name string, role models.Role, status models.Status) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := e.repos.Users().Create(context.Background(), &models.User{
		UserName: name, PasswordHash: hash, Role: role, Status: status,
	})
	require.NoError(t, err)
	return u
}

// cookieFor mints a session cookie without going through login.
func (e *testEnv) cookieFor(t *testing.T, u *models.User) *http.Cookie {
	t.Helper()
	token, _, err := e.issuer.Issue(u.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: common.SessionCookieName, Value: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == common.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", common.SessionCookieName)
	return nil
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorResponse](t, rec).Message
}

func jsonDecode(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
