package client

import "time"

type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) IsHQ() bool { return u.Role == "hq" }

type Member struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	IsApproved bool   `json:"isApproved"`
}

type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy *int64    `json:"createdBy"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

type Sender struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Message carries ciphertext exactly as stored by the server.
type Message struct {
	ID            int64     `json:"id"`
	GroupID       int64     `json:"groupId"`
	SenderID      *int64    `json:"senderId"`
	Sender        *Sender   `json:"sender"`
	EncryptedText string    `json:"encryptedText"`
	Timestamp     time.Time `json:"timestamp"`
}

// SenderName is "[deleted]" once the author's account is gone.
func (m *Message) SenderName() string {
	if m.Sender == nil {
		return "[deleted]"
	}
	return m.Sender.Username
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type MessagePage struct {
	Messages   []Message  `json:"messages"`
	Pagination Pagination `json:"pagination"`
}

type Stats struct {
	TotalUsers    int64 `json:"totalUsers"`
	ApprovedUsers int64 `json:"approvedUsers"`
	PendingUsers  int64 `json:"pendingUsers"`
	TotalGroups   int64 `json:"totalGroups"`
	TotalMessages int64 `json:"totalMessages"`
}

// RecentMessage is the metadata-only view HQ receives.
type RecentMessage struct {
	ID         int64     `json:"id"`
	SenderID   *int64    `json:"senderId"`
	SenderName string    `json:"senderName"`
	GroupID    int64     `json:"groupId"`
	GroupName  string    `json:"groupName"`
	Timestamp  time.Time `json:"timestamp"`
}

// UserUpdate leaves nil fields unchanged.
type UserUpdate struct {
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}
