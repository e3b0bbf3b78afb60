package models

import "time"

type Role string

const (
	RoleUser Role = "user"
	RoleHQ   Role = "hq"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleHQ }

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// User is an account row. PasswordHash is only populated by lookups that
// need it for credential checks.
type User struct {
	ID           int64
	UserName     string
	PasswordHash []byte
	Role         Role
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsApproved() bool { return u.Status == StatusApproved }

// UserUpdate carries the fields HQ may change on another account.
// Nil fields are left untouched.
type UserUpdate struct {
	Role   *Role
	Status *Status
}
