package models

import "time"

type Group struct {
	ID        int64
	Name      string
	CreatedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Members   []Member
}

// Member is the user projection embedded into a group.
type Member struct {
	ID       int64
	UserName string
	Role     Role
	Status   Status
}
