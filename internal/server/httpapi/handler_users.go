package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ *models.User) {
	users, err := s.users.ListAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserList(users))
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request, _ *models.User) {
	users, err := s.users.ListPending(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserList(users))
}

func (s *Server) handleApproveUser(w http.ResponseWriter, r *http.Request, hq *models.User) {
	id, err := pathID(r, "id", "Invalid user ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Approve(r.Context(), hq.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "User approved", "user_id", user.ID, "by", hq.ID)
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleRejectUser(w http.ResponseWriter, r *http.Request, hq *models.User) {
	id, err := pathID(r, "id", "Invalid user ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Reject(r.Context(), hq.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "User rejected", "user_id", user.ID, "by", hq.ID)
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, hq *models.User) {
	id, err := pathID(r, "id", "Invalid user ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var upd models.UserUpdate
	if req.Role != nil {
		role := models.Role(*req.Role)
		upd.Role = &role
	}
	if req.Status != nil {
		status := models.Status(*req.Status)
		upd.Status = &status
	}

	user, err := s.users.Update(r.Context(), hq.ID, id, upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, hq *models.User) {
	id, err := pathID(r, "id", "Invalid user ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.users.Delete(r.Context(), hq.ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "User deleted", "user_id", id, "by", hq.ID)
	writeMessage(w, http.StatusOK, "User deleted successfully")
}
