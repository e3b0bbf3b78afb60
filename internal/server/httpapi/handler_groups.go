package httpapi

import (
	"math"
	"net/http"

	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/services"
)

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request, user *models.User) {
	groups, err := s.groups.ListForUser(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroupList(groups))
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request, hq *models.User) {
	var req groupRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	group, err := s.groups.Create(r.Context(), req.Name, hq.ID, req.Members)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Group created", "group_id", group.ID, "members", len(group.Members))
	writeJSON(w, http.StatusCreated, newGroupResponse(group))
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := pathID(r, "id", "Invalid group ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	group, err := s.groups.Get(r.Context(), id, user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroupResponse(group))
}

func (s *Server) handleRenameGroup(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, err := pathID(r, "id", "Invalid group ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req renameGroupRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	group, err := s.groups.Rename(r.Context(), id, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroupResponse(group))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request, hq *models.User) {
	id, err := pathID(r, "id", "Invalid group ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.groups.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Group deleted", "group_id", id, "by", hq.ID)
	writeMessage(w, http.StatusOK, "Group deleted successfully")
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, err := pathID(r, "id", "Invalid group ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req addMemberRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	group, err := s.groups.AddMember(r.Context(), id, req.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroupResponse(group))
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, err := pathID(r, "id", "Invalid group ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "userId", "Invalid user ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	group, err := s.groups.RemoveMember(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroupResponse(group))
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request, user *models.User) {
	groupID, err := pathID(r, "groupId", "Invalid group ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := queryInt(r, "page", 1, math.MaxInt, "Page must be a positive integer")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 1, services.MaxPageSize, "Limit must be between 1 and 100")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.messages.List(r.Context(), groupID, user.ID, page, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMessagePageResponse(result))
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, user *models.User) {
	groupID, err := pathID(r, "groupId", "Invalid group ID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req sendMessageRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := s.messages.Send(r.Context(), groupID, user, req.EncryptedText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.messagesSent.Inc()
	writeJSON(w, http.StatusCreated, newChatMessageResponse(msg))
}
