package validator

import (
	"time"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

// ExamCreateRequest represents the request structure for creating exams
type ExamCreateRequest struct {
	Title             string                  `json:"title" validate:"required,exam_title"`
	AssignedGroups    []string                `json:"assigned_groups" validate:"required,min=1,dive,min=1,max=50"`
	StartTime         time.Time               `json:"start_time" validate:"required"`
	EndTime           time.Time               `json:"end_time" validate:"required"`
	PointsPerQuestion int                     `json:"points_per_question" validate:"required,points_per_question"`
	Announcement      *string                 `json:"announcement" validate:"omitempty,max=2000"`
	Questions         []QuestionCreateRequest `json:"questions" validate:"required,min=1,dive"`
}

// ExamUpdateRequest represents the request structure for updating exams.
// Only the announcement and the assigned groups can change after creation.
type ExamUpdateRequest struct {
	Announcement   *string  `json:"announcement" validate:"omitempty,max=2000"`
	AssignedGroups []string `json:"assigned_groups" validate:"omitempty,min=1,dive,min=1,max=50"`
}

// QuestionCreateRequest represents one question inside an exam
type QuestionCreateRequest struct {
	Type          models.QuestionType `json:"type" validate:"required,question_type"`
	Text          string              `json:"text" validate:"required,min=1,max=2000"`
	Options       []string            `json:"options" validate:"omitempty,dive,min=1,max=500"`
	CorrectAnswer string              `json:"correct_answer" validate:"required,min=1,max=500"`
	ImageURL      *string             `json:"image_url" validate:"omitempty,url,max=500"`
}

// StudentCreateRequest represents the request structure for creating students
type StudentCreateRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=100"`
	Group         string  `json:"group" validate:"required,min=1,max=50"`
	Class         string  `json:"class" validate:"required,min=1,max=50"`
	ParentContact *string `json:"parent_contact" validate:"omitempty,max=100"`
	Username      string  `json:"username" validate:"required,username_format"`
	Password      string  `json:"password" validate:"required,min=6,max=72"`
}

// StudentUpdateRequest represents the request structure for updating students
type StudentUpdateRequest struct {
	Name          *string               `json:"name" validate:"omitempty,min=1,max=100"`
	Group         *string               `json:"group" validate:"omitempty,min=1,max=50"`
	Class         *string               `json:"class" validate:"omitempty,min=1,max=50"`
	ParentContact *string               `json:"parent_contact" validate:"omitempty,max=100"`
	Password      *string               `json:"password" validate:"omitempty,min=6,max=72"`
	Status        *models.StudentStatus `json:"status" validate:"omitempty,oneof=active disabled"`
}

// LoginRequest represents a student login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SubmitRequest represents an exam submission. Answers map question IDs
// (as decimal strings) to the student's answer text.
type SubmitRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

// ProctoringEventRequest reports a proctoring violation during an exam.
// Answers carries whatever the student had entered when the violation
// fired, so the forced submission preserves them.
type ProctoringEventRequest struct {
	Type    models.ProctoringEventType `json:"type" validate:"required,oneof=visibility_hidden fullscreen_exit"`
	Answers map[string]string          `json:"answers" validate:"omitempty"`
}

// AppealCreateRequest represents a student disputing a graded answer
type AppealCreateRequest struct {
	ExamID        uint   `json:"exam_id" validate:"required"`
	QuestionID    uint   `json:"question_id" validate:"required"`
	Justification string `json:"justification" validate:"required,min=10,max=2000"`
}

// AppealResolveRequest represents a teacher's decision on an appeal
type AppealResolveRequest struct {
	Approve  bool    `json:"approve"`
	Response *string `json:"response" validate:"omitempty,max=2000"`
}

// GenerateQuestionsRequest asks for AI question generation from a PDF.
// The PDF itself arrives as a multipart file next to these fields.
type GenerateQuestionsRequest struct {
	NumQuestions int `json:"num_questions" form:"num_questions" validate:"required,min=1,max=50"`
}
