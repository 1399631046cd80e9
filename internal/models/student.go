package models

import (
	"time"

	"gorm.io/gorm"
)

type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentDisabled StudentStatus = "disabled"
)

type Student struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	Group string `json:"group" gorm:"not null;size:100;index" validate:"required,max=100"`
	Class string `json:"class" gorm:"size:50"`

	// Optional parent contact for notifications.
	ParentContact *string `json:"parent_contact" gorm:"size:100"`

	// Login credentials. The hash is bcrypt and never serialized.
	Username     string `json:"username" gorm:"uniqueIndex;not null;size:100" validate:"required,max=100"`
	PasswordHash string `json:"-" gorm:"not null;size:255"`

	Status StudentStatus `json:"status" gorm:"not null;default:active;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Student) TableName() string {
	return "students"
}

// IsActive reports whether the student may log in and take exams.
func (s *Student) IsActive() bool {
	return s.Status == StudentActive
}
