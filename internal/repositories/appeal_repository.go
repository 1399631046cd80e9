package repositories

import (
	"context"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

// AppealRepository interface for appeal persistence
type AppealRepository interface {
	Create(ctx context.Context, appeal *models.Appeal) error
	GetByID(ctx context.Context, id uint) (*models.Appeal, error)
	Update(ctx context.Context, appeal *models.Appeal) error

	// Query operations
	List(ctx context.Context, filters AppealFilters) ([]*models.Appeal, int64, error)
	GetByStudent(ctx context.Context, studentID uint) ([]*models.Appeal, error)
	ExistsPending(ctx context.Context, examID, studentID, questionID uint) (bool, error)
	CountPending(ctx context.Context) (int64, error)

	// Cascade cleanup
	DeleteByExam(ctx context.Context, examID uint) error
	DeleteByStudent(ctx context.Context, studentID uint) error
}
