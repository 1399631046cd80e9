package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/math-2025/www.riyaziyyat.az/internal/cache"
	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
)

type StudentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewStudentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.StudentRepository {
	return &StudentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// Create inserts a new student account
func (s *StudentPostgreSQL) Create(ctx context.Context, student *models.Student) error {
	if err := s.db.WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	_ = s.cacheManager.Student.InvalidatePattern(ctx, "list:*")
	return nil
}

// GetByID retrieves a student by ID with caching
func (s *StudentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var student models.Student

	err := s.cacheManager.Student.CacheOrExecute(ctx, cacheKey, &student, cache.StudentCacheConfig.TTL, func() (interface{}, error) {
		var dbStudent models.Student
		if err := s.db.WithContext(ctx).First(&dbStudent, id).Error; err != nil {
			return nil, err
		}
		return &dbStudent, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return &student, nil
}

// GetByUsername retrieves a student by login name. Not cached; used on the
// login path where stale credentials would be harmful.
func (s *StudentPostgreSQL) GetByUsername(ctx context.Context, username string) (*models.Student, error) {
	var student models.Student
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get student by username: %w", err)
	}
	return &student, nil
}

// Update saves the full student row and invalidates cache
func (s *StudentPostgreSQL) Update(ctx context.Context, student *models.Student) error {
	if err := s.db.WithContext(ctx).Save(student).Error; err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	_ = s.cacheManager.InvalidateStudent(ctx, student.ID)
	return nil
}

// Delete hard deletes a student. Dependent rows are removed by the service
// inside the same transaction.
func (s *StudentPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Unscoped().Delete(&models.Student{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete student: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	_ = s.cacheManager.InvalidateStudent(ctx, id)
	return nil
}

// List retrieves students matching filters with total count
func (s *StudentPostgreSQL) List(ctx context.Context, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Student{})

	if filters.Group != nil {
		query = query.Where("\"group\" = ?", *filters.Group)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Search != nil {
		pattern := "%" + *filters.Search + "%"
		query = query.Where("name ILIKE ? OR username ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	query = query.Order("name ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var students []*models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}

	return students, total, nil
}

// GetByGroup retrieves all students in a group
func (s *StudentPostgreSQL) GetByGroup(ctx context.Context, group string) ([]*models.Student, error) {
	var students []*models.Student
	err := s.db.WithContext(ctx).
		Where("\"group\" = ?", group).
		Order("name ASC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get students by group: %w", err)
	}
	return students, nil
}

// ExistsByUsername checks whether a login name is taken
func (s *StudentPostgreSQL) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// ListGroups returns the distinct group names in use
func (s *StudentPostgreSQL) ListGroups(ctx context.Context) ([]string, error) {
	var groups []string
	err := s.db.WithContext(ctx).
		Model(&models.Student{}).
		Distinct("\"group\"").
		Order("\"group\" ASC").
		Pluck("\"group\"", &groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}
