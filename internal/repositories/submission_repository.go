package repositories

import (
	"context"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

// SubmissionRepository interface for submission persistence
type SubmissionRepository interface {
	// CreateIfAbsent inserts the submission unless one already exists for the
	// same exam and student. It returns the stored row and whether this call
	// created it. The first write for a pair always wins.
	CreateIfAbsent(ctx context.Context, submission *models.Submission) (*models.Submission, bool, error)

	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	GetByExamAndStudent(ctx context.Context, examID, studentID uint) (*models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error
	UpdateScore(ctx context.Context, id uint, score int) error

	// Query operations
	GetByExam(ctx context.Context, examID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)
	GetByStudent(ctx context.Context, studentID uint) ([]*models.Submission, error)
	ExistsByExamAndStudent(ctx context.Context, examID, studentID uint) (bool, error)

	// Cascade cleanup
	DeleteByExam(ctx context.Context, examID uint) error
	DeleteByStudent(ctx context.Context, studentID uint) error
}

// ProctoringRepository interface for proctoring event persistence
type ProctoringRepository interface {
	Create(ctx context.Context, event *models.ProctoringEvent) error
	GetByExam(ctx context.Context, examID uint) ([]*models.ProctoringEvent, error)
	GetByExamAndStudent(ctx context.Context, examID, studentID uint) ([]*models.ProctoringEvent, error)
	DeleteByExam(ctx context.Context, examID uint) error
	DeleteByStudent(ctx context.Context, studentID uint) error
}
