package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.auth.Register(r.Context(), req.Username, req.Password, models.Role(req.Role))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.registered.Inc()
	s.logger.Info(r.Context(), "Registered", "username", session.User.UserName, "role", session.User.Role)

	s.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusCreated, newUserResponse(session.User))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.metrics.logins.WithLabelValues(loginOutcome(err)).Inc()
		s.writeError(w, r, err)
		return
	}
	s.metrics.logins.WithLabelValues("success").Inc()

	s.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusOK, newUserResponse(session.User))
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return "invalid"
	case errors.Is(err, common.ErrorRejected):
		return "rejected"
	default:
		return "error"
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request, user *models.User) {
	me, err := s.auth.Me(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(me))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Message: "DefComm API is running"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Route not found: "+r.URL.RequestURI())
}
