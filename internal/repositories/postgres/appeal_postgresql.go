package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
)

type AppealPostgreSQL struct {
	db *gorm.DB
}

func NewAppealPostgreSQL(db *gorm.DB) repositories.AppealRepository {
	return &AppealPostgreSQL{db: db}
}

// Create inserts a new appeal
func (a *AppealPostgreSQL) Create(ctx context.Context, appeal *models.Appeal) error {
	if err := a.db.WithContext(ctx).Create(appeal).Error; err != nil {
		return fmt.Errorf("failed to create appeal: %w", err)
	}
	return nil
}

// GetByID retrieves an appeal by ID
func (a *AppealPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Appeal, error) {
	var appeal models.Appeal
	if err := a.db.WithContext(ctx).First(&appeal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get appeal: %w", err)
	}
	return &appeal, nil
}

// Update saves the full appeal row
func (a *AppealPostgreSQL) Update(ctx context.Context, appeal *models.Appeal) error {
	if err := a.db.WithContext(ctx).Save(appeal).Error; err != nil {
		return fmt.Errorf("failed to update appeal: %w", err)
	}
	return nil
}

// List retrieves appeals matching filters with total count
func (a *AppealPostgreSQL) List(ctx context.Context, filters repositories.AppealFilters) ([]*models.Appeal, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Appeal{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ExamID != nil {
		query = query.Where("exam_id = ?", *filters.ExamID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count appeals: %w", err)
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var appeals []*models.Appeal
	if err := query.Find(&appeals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list appeals: %w", err)
	}

	return appeals, total, nil
}

// GetByStudent retrieves all appeals of a student
func (a *AppealPostgreSQL) GetByStudent(ctx context.Context, studentID uint) ([]*models.Appeal, error) {
	var appeals []*models.Appeal
	err := a.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&appeals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get appeals by student: %w", err)
	}
	return appeals, nil
}

// ExistsPending checks for an open appeal on the same question
func (a *AppealPostgreSQL) ExistsPending(ctx context.Context, examID, studentID, questionID uint) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.Appeal{}).
		Where("exam_id = ? AND student_id = ? AND question_id = ? AND status = ?",
			examID, studentID, questionID, models.AppealPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pending appeal: %w", err)
	}
	return count > 0, nil
}

// CountPending counts all unresolved appeals
func (a *AppealPostgreSQL) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.Appeal{}).
		Where("status = ?", models.AppealPending).
		Count(&count).Error
	return count, err
}

// DeleteByExam removes all appeals of an exam
func (a *AppealPostgreSQL) DeleteByExam(ctx context.Context, examID uint) error {
	err := a.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Delete(&models.Appeal{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete appeals by exam: %w", err)
	}
	return nil
}

// DeleteByStudent removes all appeals of a student
func (a *AppealPostgreSQL) DeleteByStudent(ctx context.Context, studentID uint) error {
	err := a.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&models.Appeal{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete appeals by student: %w", err)
	}
	return nil
}
