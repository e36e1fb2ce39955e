package models

import "time"

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	GroupCode    *string   `json:"group_id"`
	Version      int64     `json:"-"`
	DateJoined   time.Time `json:"date_joined"`
}

// InGroup reports whether the user currently belongs to any group.
func (u User) InGroup() bool {
	return u.GroupCode != nil && *u.GroupCode != ""
}
