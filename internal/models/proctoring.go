package models

import "time"

// ProctoringEventType names the browser-level signals the client reports.
// Both map to the same action: a one-shot forced submission with the cheating
// flag set. The signal is client-trust only and is kept as a best-effort
// audit record, not a security control.
type ProctoringEventType string

const (
	EventVisibilityHidden ProctoringEventType = "visibility_hidden"
	EventFullscreenExit   ProctoringEventType = "fullscreen_exit"
)

type ProctoringEvent struct {
	ID        uint                `json:"id" gorm:"primaryKey"`
	ExamID    uint                `json:"exam_id" gorm:"not null;index"`
	StudentID uint                `json:"student_id" gorm:"not null;index"`
	Type      ProctoringEventType `json:"type" gorm:"not null;index"`

	// Context
	UserAgent string `json:"user_agent" gorm:"type:text"`
	IPAddress string `json:"ip_address" gorm:"size:45"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Exam    Exam    `json:"-" gorm:"foreignKey:ExamID"`
	Student Student `json:"-" gorm:"foreignKey:StudentID"`
}

func (ProctoringEvent) TableName() string {
	return "proctoring_events"
}

// IsKnownProctoringEvent validates a client-reported event type.
func IsKnownProctoringEvent(t ProctoringEventType) bool {
	return t == EventVisibilityHidden || t == EventFullscreenExit
}
