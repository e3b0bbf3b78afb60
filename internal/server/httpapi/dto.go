package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/server/models"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user hq"`
}

func (r *registerRequest) normalize() { r.Username = strings.TrimSpace(r.Username) }

type loginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required"`
}

func (r *loginRequest) normalize() { r.Username = strings.TrimSpace(r.Username) }

type updateUserRequest struct {
	Role   *string `json:"role" validate:"omitempty,oneof=user hq"`
	Status *string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}

type groupRequest struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Members []int64 `json:"members" validate:"omitempty,dive,gt=0"`
}

func (r *groupRequest) normalize() { r.Name = strings.TrimSpace(r.Name) }

// renameGroupRequest carries only the name; membership changes go through
// the members routes.
type renameGroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (r *renameGroupRequest) normalize() { r.Name = strings.TrimSpace(r.Name) }

type addMemberRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

type sendMessageRequest struct {
	EncryptedText string `json:"encryptedText" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.UserName,
		Role:       string(u.Role),
		Status:     string(u.Status),
		IsApproved: u.IsApproved(),
		CreatedAt:  u.CreatedAt,
	}
}

func newUserList(users []*models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return out
}

type memberResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	IsApproved bool   `json:"isApproved"`
}

type groupResponse struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	CreatedBy *int64           `json:"createdBy"`
	Members   []memberResponse `json:"members"`
	CreatedAt time.Time        `json:"createdAt"`
}

func newGroupResponse(g *models.Group) groupResponse {
	members := make([]memberResponse, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, memberResponse{
			ID:         m.ID,
			Username:   m.UserName,
			Role:       string(m.Role),
			IsApproved: m.Status == models.StatusApproved,
		})
	}
	return groupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func newGroupList(groups []*models.Group) []groupResponse {
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, newGroupResponse(g))
	}
	return out
}

type senderResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type chatMessageResponse struct {
	ID            int64           `json:"id"`
	GroupID       int64           `json:"groupId"`
	SenderID      *int64          `json:"senderId"`
	Sender        *senderResponse `json:"sender"`
	EncryptedText string          `json:"encryptedText"`
	Timestamp     time.Time       `json:"timestamp"`
}

func newChatMessageResponse(m *models.Message) chatMessageResponse {
	out := chatMessageResponse{
		ID:            m.ID,
		GroupID:       m.GroupID,
		SenderID:      m.SenderID,
		EncryptedText: m.EncryptedText,
		Timestamp:     m.CreatedAt,
	}
	if m.Sender != nil {
		out.Sender = &senderResponse{ID: m.Sender.ID, Username: m.Sender.UserName}
	}
	return out
}

type paginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type messagePageResponse struct {
	Messages   []chatMessageResponse `json:"messages"`
	Pagination paginationResponse    `json:"pagination"`
}

func newMessagePageResponse(p *models.MessagePage) messagePageResponse {
	msgs := make([]chatMessageResponse, 0, len(p.Messages))
	for _, m := range p.Messages {
		msgs = append(msgs, newChatMessageResponse(m))
	}
	return messagePageResponse{
		Messages: msgs,
		Pagination: paginationResponse{
			Page:  p.Page,
			Limit: p.Limit,
			Total: p.Total,
			Pages: p.Pages,
		},
	}
}

// recentMessageResponse is the HQ view of a message. It has no payload
// field.
type recentMessageResponse struct {
	ID         int64     `json:"id"`
	SenderID   *int64    `json:"senderId"`
	SenderName string    `json:"senderName"`
	GroupID    int64     `json:"groupId"`
	GroupName  string    `json:"groupName"`
	Timestamp  time.Time `json:"timestamp"`
}

func newRecentList(metas []*models.MessageMeta) []recentMessageResponse {
	out := make([]recentMessageResponse, 0, len(metas))
	for _, m := range metas {
		out = append(out, recentMessageResponse{
			ID:         m.ID,
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
			GroupID:    m.GroupID,
			GroupName:  m.GroupName,
			Timestamp:  m.CreatedAt,
		})
	}
	return out
}

type statsResponse struct {
	TotalUsers    int64 `json:"totalUsers"`
	ApprovedUsers int64 `json:"approvedUsers"`
	PendingUsers  int64 `json:"pendingUsers"`
	TotalGroups   int64 `json:"totalGroups"`
	TotalMessages int64 `json:"totalMessages"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
