package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
)

type ProctoringPostgreSQL struct {
	db *gorm.DB
}

func NewProctoringPostgreSQL(db *gorm.DB) repositories.ProctoringRepository {
	return &ProctoringPostgreSQL{db: db}
}

// Create inserts a proctoring event
func (p *ProctoringPostgreSQL) Create(ctx context.Context, event *models.ProctoringEvent) error {
	if err := p.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create proctoring event: %w", err)
	}
	return nil
}

// GetByExam retrieves all proctoring events of an exam
func (p *ProctoringPostgreSQL) GetByExam(ctx context.Context, examID uint) ([]*models.ProctoringEvent, error) {
	var events []*models.ProctoringEvent
	err := p.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get proctoring events: %w", err)
	}
	return events, nil
}

// GetByExamAndStudent retrieves proctoring events for one student in an exam
func (p *ProctoringPostgreSQL) GetByExamAndStudent(ctx context.Context, examID, studentID uint) ([]*models.ProctoringEvent, error) {
	var events []*models.ProctoringEvent
	err := p.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get proctoring events: %w", err)
	}
	return events, nil
}

// DeleteByExam removes all proctoring events of an exam
func (p *ProctoringPostgreSQL) DeleteByExam(ctx context.Context, examID uint) error {
	err := p.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Delete(&models.ProctoringEvent{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete proctoring events by exam: %w", err)
	}
	return nil
}

// DeleteByStudent removes all proctoring events of a student
func (p *ProctoringPostgreSQL) DeleteByStudent(ctx context.Context, studentID uint) error {
	err := p.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&models.ProctoringEvent{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete proctoring events by student: %w", err)
	}
	return nil
}
