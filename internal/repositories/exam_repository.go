package repositories

import (
	"context"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

// ExamRepository interface for exam and question persistence
type ExamRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error)
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)
	GetByGroup(ctx context.Context, group string) ([]*models.Exam, error)

	// Question operations
	CreateQuestions(ctx context.Context, questions []*models.Question) error
	GetQuestions(ctx context.Context, examID uint) ([]*models.Question, error)
	ReplaceQuestions(ctx context.Context, examID uint, questions []*models.Question) error
	DeleteQuestions(ctx context.Context, examID uint) error

	// Statistics
	GetStats(ctx context.Context, examID uint) (*ExamStats, error)
	CountQuestions(ctx context.Context, examID uint) (int64, error)
}
