package models

import "time"

// Message is an immutable ciphertext entry in a group's log. Sender is nil
// once the authoring account has been deleted.
type Message struct {
	ID            int64
	GroupID       int64
	SenderID      *int64
	Sender        *Sender
	EncryptedText string
	CreatedAt     time.Time
}

type Sender struct {
	ID       int64
	UserName string
}

// MessagePage is one page of a group's log plus paging totals.
type MessagePage struct {
	Messages []*Message
	Page     int
	Limit    int
	Total    int64
	Pages    int64
}

// MessageMeta is what HQ sees about a message. It deliberately has no
// payload field.
type MessageMeta struct {
	ID         int64
	SenderID   *int64
	SenderName string
	GroupID    int64
	GroupName  string
	CreatedAt  time.Time
}

// Stats is a point-in-time rollup. Each count is queried independently.
type Stats struct {
	TotalUsers    int64
	ApprovedUsers int64
	PendingUsers  int64
	TotalGroups   int64
	TotalMessages int64
}
