package models

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	FreeForm       QuestionType = "free_form"
)

// MultipleChoiceOptionCount is the fixed option count for multiple-choice
// questions. The creation validator rejects anything else.
const MultipleChoiceOptionCount = 5

type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	ExamID   uint         `json:"exam_id" gorm:"not null;index"`
	Position int          `json:"position" gorm:"not null"`
	Type     QuestionType `json:"type" gorm:"not null;index"`
	Text     string       `json:"text" gorm:"type:text;not null" validate:"required"`

	// Options is a JSON array of exactly 5 strings for multiple-choice
	// questions and empty for free-form ones.
	Options       datatypes.JSON `json:"options" gorm:"type:jsonb"`
	CorrectAnswer string         `json:"correct_answer" gorm:"type:text;not null"`
	ImageURL      *string        `json:"image_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// AnswerKey is the key under which a submission stores this question's
// answer.
func (q *Question) AnswerKey() string {
	return strconv.FormatUint(uint64(q.ID), 10)
}

// OptionList decodes the options JSON array.
func (q *Question) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil
	}
	return options
}
