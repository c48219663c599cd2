package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

type User struct {
	ID    uint     `json:"id" gorm:"primaryKey"`
	Email string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Name  string   `json:"name" gorm:"not null;size:100"`
	Role  UserRole `json:"role" gorm:"not null;size:20;index"`

	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}
