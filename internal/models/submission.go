package models

import (
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// ScoreUngraded is the sentinel for a submission whose score has not been
// computed. Submissions created through the service are graded at submit time,
// so the sentinel only appears for rows written by older clients.
const ScoreUngraded = -1

type Submission struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	ExamID    uint `json:"exam_id" gorm:"not null;index;uniqueIndex:idx_submissions_exam_student"`
	StudentID uint `json:"student_id" gorm:"not null;index;uniqueIndex:idx_submissions_exam_student"`

	// Answers maps question id (decimal string) to the student's answer.
	Answers datatypes.JSONMap `json:"answers" gorm:"type:jsonb"`

	SubmittedAt      time.Time `json:"submitted_at" gorm:"not null"`
	CheatingDetected bool      `json:"cheating_detected" gorm:"not null;default:false;index"`
	Score            int       `json:"score" gorm:"not null;default:-1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Exam    Exam    `json:"-" gorm:"foreignKey:ExamID"`
	Student Student `json:"-" gorm:"foreignKey:StudentID"`
}

func (Submission) TableName() string {
	return "submissions"
}

// AnswerFor returns the stored answer for a question, if any.
func (s *Submission) AnswerFor(questionID uint) (string, bool) {
	if s.Answers == nil {
		return "", false
	}
	raw, ok := s.Answers[strconv.FormatUint(uint64(questionID), 10)]
	if !ok {
		return "", false
	}
	answer, ok := raw.(string)
	return answer, ok
}

// AnswerMap flattens the JSONB answer map into map[questionID]answer.
func (s *Submission) AnswerMap() map[string]string {
	answers := make(map[string]string, len(s.Answers))
	for key, raw := range s.Answers {
		if answer, ok := raw.(string); ok {
			answers[key] = answer
		}
	}
	return answers
}

// NewAnswerMap builds the JSONB answer payload from a plain string map.
func NewAnswerMap(answers map[string]string) datatypes.JSONMap {
	payload := make(datatypes.JSONMap, len(answers))
	for key, value := range answers {
		payload[key] = value
	}
	return payload
}
