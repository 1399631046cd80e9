package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExamStatus is the student-facing lifecycle state of an exam. It is derived
// from the exam window, the current time and the presence of a submission on
// every read; it is never stored.
type ExamStatus string

const (
	// Submission exists and has a score: results are visible.
	ExamStatusCompleted ExamStatus = "completed"
	// Submission exists but is ungraded, e.g. flagged for review.
	ExamStatusSubmitted ExamStatus = "submitted"
	// No submission and the window has not opened yet.
	ExamStatusNotStarted ExamStatus = "not_started"
	// No submission and the window has closed.
	ExamStatusMissed ExamStatus = "missed"
	// Window is open and the student has not submitted.
	ExamStatusInProgress ExamStatus = "in_progress"
)

type Exam struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Title string `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`

	// AssignedGroups is a JSON array of group names the exam is visible to.
	AssignedGroups datatypes.JSON `json:"assigned_groups" gorm:"type:jsonb"`

	StartTime         time.Time `json:"start_time" gorm:"not null;index"`
	EndTime           time.Time `json:"end_time" gorm:"not null;index"`
	PointsPerQuestion int       `json:"points_per_question" gorm:"not null" validate:"required,min=1"`
	Announcement      *string   `json:"announcement" gorm:"type:text"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:ExamID"`

	// Computed fields (not stored)
	QuestionCount   int `json:"question_count" gorm:"-"`
	SubmissionCount int `json:"submission_count" gorm:"-"`
}

func (Exam) TableName() string {
	return "exams"
}

// GroupList decodes the assigned-groups JSON array.
func (e *Exam) GroupList() []string {
	if len(e.AssignedGroups) == 0 {
		return nil
	}
	var groups []string
	if err := json.Unmarshal(e.AssignedGroups, &groups); err != nil {
		return nil
	}
	return groups
}

// IsAssignedTo reports whether the exam is visible to the given group.
func (e *Exam) IsAssignedTo(group string) bool {
	for _, g := range e.GroupList() {
		if g == group {
			return true
		}
	}
	return false
}

// MaxScore is the score a fully correct submission earns.
func (e *Exam) MaxScore() int {
	return len(e.Questions) * e.PointsPerQuestion
}
