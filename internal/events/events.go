package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	// Exam events
	EventExamCreated EventType = "exam.created"
	EventExamDeleted EventType = "exam.deleted"

	// Submission events
	EventSubmissionReceived EventType = "exam.submission_received"
	EventCheatingDetected   EventType = "exam.cheating_detected"

	// Appeal events
	EventAppealCreated  EventType = "appeal.created"
	EventAppealResolved EventType = "appeal.resolved"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type ExamCreatedEvent struct {
	ExamID         uint      `json:"exam_id"`
	ExamTitle      string    `json:"exam_title"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	AssignedGroups []string  `json:"assigned_groups"`
	CreatorID      string    `json:"creator_id"`
}

type ExamDeletedEvent struct {
	ExamID    uint      `json:"exam_id"`
	ExamTitle string    `json:"exam_title"`
	DeletedAt time.Time `json:"deleted_at"`
	CreatorID string    `json:"creator_id"`
}

type SubmissionReceivedEvent struct {
	SubmissionID uint      `json:"submission_id"`
	ExamID       uint      `json:"exam_id"`
	ExamTitle    string    `json:"exam_title"`
	StudentID    uint      `json:"student_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"max_score"`
}

type CheatingDetectedEvent struct {
	SubmissionID uint      `json:"submission_id"`
	ExamID       uint      `json:"exam_id"`
	ExamTitle    string    `json:"exam_title"`
	StudentID    uint      `json:"student_id"`
	EventKind    string    `json:"event_kind"`
	DetectedAt   time.Time `json:"detected_at"`
}

type AppealCreatedEvent struct {
	AppealID   uint   `json:"appeal_id"`
	ExamID     uint   `json:"exam_id"`
	ExamTitle  string `json:"exam_title"`
	StudentID  uint   `json:"student_id"`
	QuestionID uint   `json:"question_id"`
}

type AppealResolvedEvent struct {
	AppealID   uint      `json:"appeal_id"`
	ExamID     uint      `json:"exam_id"`
	ExamTitle  string    `json:"exam_title"`
	StudentID  uint      `json:"student_id"`
	QuestionID uint      `json:"question_id"`
	Approved   bool      `json:"approved"`
	ResolvedAt time.Time `json:"resolved_at"`
	NewScore   *int      `json:"new_score,omitempty"`
}

// Event factory functions

func NewExamCreatedEvent(examID uint, title string, startTime, endTime time.Time, groups []string, creatorID string) *NotificationEvent {
	return newEvent(EventExamCreated, ExamCreatedEvent{
		ExamID:         examID,
		ExamTitle:      title,
		StartTime:      startTime,
		EndTime:        endTime,
		AssignedGroups: groups,
		CreatorID:      creatorID,
	})
}

func NewExamDeletedEvent(examID uint, title, creatorID string) *NotificationEvent {
	return newEvent(EventExamDeleted, ExamDeletedEvent{
		ExamID:    examID,
		ExamTitle: title,
		DeletedAt: time.Now(),
		CreatorID: creatorID,
	})
}

func NewSubmissionReceivedEvent(submissionID, examID uint, examTitle string, studentID uint, submittedAt time.Time, score, maxScore int) *NotificationEvent {
	return newEvent(EventSubmissionReceived, SubmissionReceivedEvent{
		SubmissionID: submissionID,
		ExamID:       examID,
		ExamTitle:    examTitle,
		StudentID:    studentID,
		SubmittedAt:  submittedAt,
		Score:        score,
		MaxScore:     maxScore,
	})
}

func NewCheatingDetectedEvent(submissionID, examID uint, examTitle string, studentID uint, eventKind string) *NotificationEvent {
	return newEvent(EventCheatingDetected, CheatingDetectedEvent{
		SubmissionID: submissionID,
		ExamID:       examID,
		ExamTitle:    examTitle,
		StudentID:    studentID,
		EventKind:    eventKind,
		DetectedAt:   time.Now(),
	})
}

func NewAppealCreatedEvent(appealID, examID uint, examTitle string, studentID, questionID uint) *NotificationEvent {
	return newEvent(EventAppealCreated, AppealCreatedEvent{
		AppealID:   appealID,
		ExamID:     examID,
		ExamTitle:  examTitle,
		StudentID:  studentID,
		QuestionID: questionID,
	})
}

func NewAppealResolvedEvent(appealID, examID uint, examTitle string, studentID, questionID uint, approved bool, newScore *int) *NotificationEvent {
	return newEvent(EventAppealResolved, AppealResolvedEvent{
		AppealID:   appealID,
		ExamID:     examID,
		ExamTitle:  examTitle,
		StudentID:  studentID,
		QuestionID: questionID,
		Approved:   approved,
		ResolvedAt: time.Now(),
		NewScore:   newScore,
	})
}

func newEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "exam-service",
		Version:   "1.0",
		Data:      data,
	}
}
