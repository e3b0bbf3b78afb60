package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/services"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ *models.User) {
	st, err := s.admin.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalUsers:    st.TotalUsers,
		ApprovedUsers: st.ApprovedUsers,
		PendingUsers:  st.PendingUsers,
		TotalGroups:   st.TotalGroups,
		TotalMessages: st.TotalMessages,
	})
}

func (s *Server) handleRecentMessages(w http.ResponseWriter, r *http.Request, _ *models.User) {
	limit, err := queryInt(r, "limit", 1, services.MaxRecentLimit, "Limit must be between 1 and 100")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	metas, err := s.admin.RecentMessages(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecentList(metas))
}
