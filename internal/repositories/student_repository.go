package repositories

import (
	"context"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

// StudentRepository interface for student account persistence
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	GetByUsername(ctx context.Context, username string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context, filters StudentFilters) ([]*models.Student, int64, error)
	GetByGroup(ctx context.Context, group string) ([]*models.Student, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ListGroups(ctx context.Context) ([]string, error)
}
