package httpapi

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

// AuthedHandlerFunc receives the account resolved from the session cookie.
type AuthedHandlerFunc func(w http.ResponseWriter, r *http.Request, user *models.User)

var (
	errNoToken      = common.NewError(common.ErrorUnauthorized, "Not authorized, no token")
	errTokenFailed  = common.NewError(common.ErrorUnauthorized, "Not authorized, token failed")
	errUserMissing  = common.NewError(common.ErrorUnauthorized, "Not authorized, user not found")
	errRoleRequired = common.NewError(common.ErrorForbidden, "Not authorized to access this route")
)

// UserFromContext returns the account stored by the session gate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

func (s *Server) authed(next AuthedHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(common.SessionCookieName)
		if err != nil || cookie.Value == "" {
			s.writeError(w, r, errNoToken)
			return
		}

		user, err := s.auth.Authenticate(r.Context(), cookie.Value)
		switch {
		case err == nil:
		case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
			s.writeError(w, r, errTokenFailed)
			return
		case errors.Is(err, common.ErrorNotFound):
			s.writeError(w, r, errUserMissing)
			return
		default:
			s.writeError(w, r, err)
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), userKey, user))
		next(w, r, user)
	})
}

// requireRole lets through approved accounts holding one of roles.
// A pending or rejected account is refused even when it registered as hq.
func (s *Server) requireRole(next AuthedHandlerFunc, roles ...models.Role) AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, user *models.User) {
		if !slices.Contains(roles, user.Role) || !user.IsApproved() {
			s.writeError(w, r, errRoleRequired)
			return
		}
		next(w, r, user)
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.auth.SessionTTL() / time.Second),
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}
