package httpapi

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/auth"
	"github.com/dmitrijs2005/defcomm/internal/server/config"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_CreatesPendingUserAndSetsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "  alpha_1 ",
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[userResponse](t, rec)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "alpha_1", got.Username)
	assert.Equal(t, "user", got.Role)
	assert.Equal(t, "pending", got.Status)
	assert.False(t, got.IsApproved)

	c := sessionCookie(t, rec)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, int(env.config.SessionTTL/time.Second), c.MaxAge)

	id, err := env.issuer.Parse(c.Value)
	require.NoError(t, err)
	assert.Equal(t, got.ID, id)
}

func TestRegister_SecureCookieInProduction(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Env = config.EnvProduction })

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alpha", "password": testPassword,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, sessionCookie(t, rec).Secure)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alpha", models.RoleUser, models.StatusApproved)

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alpha", "password": testPassword,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", message(t, rec))
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		body   map[string]string
		fields map[string]string
	}{
		{
			name: "too short",
			body: map[string]string{"username": "ab", "password": "123"},
			fields: map[string]string{
				"username": "Username must be between 3 and 30 characters",
				"password": "Password must be at least 6 characters",
			},
		},
		{
			name:   "bad characters",
			body:   map[string]string{"username": "bad name!", "password": testPassword},
			fields: map[string]string{"username": "Username can only contain letters, numbers, and underscores"},
		},
		{
			name:   "missing password",
			body:   map[string]string{"username": "alpha"},
			fields: map[string]string{"password": "Password is required"},
		},
		{
			name:   "unknown role",
			body:   map[string]string{"username": "alpha", "password": testPassword, "role": "admin"},
			fields: map[string]string{"role": "Role must be either user or hq"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/register", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decode[errorResponse](t, rec)
			assert.Equal(t, "Validation failed", resp.Message)

			got := map[string]string{}
			for _, f := range resp.Errors {
				got[f.Field] = f.Message
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestRegister_MalformedAndOversizedBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "{", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", message(t, rec))

	big := `{"username":"` + strings.Repeat("a", 20<<10) + `"}`
	rec = env.do(t, http.MethodPost, "/api/auth/register", big, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "pending", models.RoleUser, models.StatusPending)
	env.seed(t, "rejected", models.RoleUser, models.StatusRejected)

	t.Run("pending account gets a session", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "pending", "password": testPassword,
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decode[userResponse](t, rec).IsApproved)
		assert.NotEmpty(t, sessionCookie(t, rec).Value)
	})

	t.Run("rejected account is refused", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "rejected", "password": testPassword,
		}, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, common.ErrAccountRejected.Message, message(t, rec))
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "pending", "password": "nope-nope",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid username or password", message(t, rec))
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "ghost", "password": testPassword,
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid username or password", message(t, rec))
	})
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", decode[messageResponse](t, rec).Message)

	c := sessionCookie(t, rec)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
	assert.True(t, c.HttpOnly)
}

func TestCheck_Gate(t *testing.T) {
	env := newTestEnv(t)
	u := env.seed(t, "alpha", models.RoleUser, models.StatusApproved)
	gone := env.seed(t, "gone", models.RoleUser, models.StatusApproved)
	goneCookie := env.cookieFor(t, gone)
	require.NoError(t, env.repos.Users().Delete(t.Context(), gone.ID))

	expired, err := auth.GenerateToken(u.ID, []byte(env.config.SecretKey), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie *http.Cookie
		code   int
		msg    string
	}{
		{"no cookie", nil, http.StatusUnauthorized, "Not authorized, no token"},
		{"garbage token", &http.Cookie{Name: common.SessionCookieName, Value: "garbage"}, http.StatusUnauthorized, "Not authorized, token failed"},
		{"expired token", &http.Cookie{Name: common.SessionCookieName, Value: expired}, http.StatusUnauthorized, "Not authorized, token failed"},
		{"deleted user", goneCookie, http.StatusUnauthorized, "Not authorized, user not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/auth/check", nil, tt.cookie)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.msg, message(t, rec))
		})
	}

	rec := env.do(t, http.MethodGet, "/api/auth/check", nil, env.cookieFor(t, u))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[userResponse](t, rec)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsApproved)
}
