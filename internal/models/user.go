package models

import "time"

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         *string   `json:"role"`
	Admin        bool      `json:"admin" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName pins the table created by the migrations.
func (User) TableName() string {
	return "users"
}

// RoleName returns the role label or "" when none was assigned.
func (u User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return *u.Role
}

// RolePtr converts an optional role label into its stored form.
// An empty label is stored as NULL.
func RolePtr(role string) *string {
	if role == "" {
		return nil
	}
	return &role
}
