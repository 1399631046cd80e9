package repositories

import (
	"time"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	CreatedBy *string    `json:"created_by"`
	Group     *string    `json:"group"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "title", "start_time"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	CheatingOnly bool `json:"cheating_only"`
	Limit        int  `json:"limit"`
	Offset       int  `json:"offset"`
}

type AppealFilters struct {
	Status    *models.AppealStatus `json:"status"`
	ExamID    *uint                `json:"exam_id"`
	StudentID *uint                `json:"student_id"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
}

type StudentFilters struct {
	Group  *string               `json:"group"`
	Status *models.StudentStatus `json:"status"`
	Search *string               `json:"search"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type ExamStats struct {
	SubmissionCount int     `json:"submission_count"`
	AverageScore    float64 `json:"average_score"`
	MaxScore        int     `json:"max_score"`
	CheatingCount   int     `json:"cheating_count"`
	PendingAppeals  int     `json:"pending_appeals"`
}
