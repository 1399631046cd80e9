package models

import "time"

type AppealStatus string

const (
	AppealPending  AppealStatus = "pending"
	AppealApproved AppealStatus = "approved"
	AppealRejected AppealStatus = "rejected"
)

// Appeal is a student's request to re-review one incorrectly graded question.
// Status transitions one way, pending -> approved|rejected, and is terminal.
type Appeal struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ExamID     uint `json:"exam_id" gorm:"not null;index"`
	StudentID  uint `json:"student_id" gorm:"not null;index"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`

	StudentJustification string       `json:"student_justification" gorm:"type:text;not null" validate:"required"`
	Status               AppealStatus `json:"status" gorm:"not null;default:pending;index"`
	TeacherResponse      *string      `json:"teacher_response" gorm:"type:text"`

	// Denormalized for display, copied at creation time.
	ExamTitle    string `json:"exam_title" gorm:"size:200"`
	QuestionText string `json:"question_text" gorm:"type:text"`
	StudentName  string `json:"student_name" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Exam    Exam    `json:"-" gorm:"foreignKey:ExamID"`
	Student Student `json:"-" gorm:"foreignKey:StudentID"`
}

func (Appeal) TableName() string {
	return "appeals"
}

// IsResolved reports whether the appeal reached a terminal status.
func (a *Appeal) IsResolved() bool {
	return a.Status != AppealPending
}
