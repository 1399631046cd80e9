package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/math-2025/www.riyaziyyat.az/internal/cache"
	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSubmissionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// CreateIfAbsent inserts the submission unless the (exam, student) pair
// already has one. ON CONFLICT DO NOTHING makes the first insert win even
// under concurrent requests; the row that ends up stored is re-read and
// returned either way.
func (s *SubmissionPostgreSQL) CreateIfAbsent(ctx context.Context, submission *models.Submission) (*models.Submission, bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(submission)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create submission: %w", result.Error)
	}

	created := result.RowsAffected > 0
	if created {
		s.invalidateStats(ctx, submission.ExamID)
		return submission, true, nil
	}

	existing, err := s.GetByExamAndStudent(ctx, submission.ExamID, submission.StudentID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByID retrieves a submission by ID
func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &submission, nil
}

// GetByExamAndStudent retrieves the single submission for an (exam, student) pair
func (s *SubmissionPostgreSQL) GetByExamAndStudent(ctx context.Context, examID, studentID uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &submission, nil
}

// Update saves the full submission row
func (s *SubmissionPostgreSQL) Update(ctx context.Context, submission *models.Submission) error {
	if err := s.db.WithContext(ctx).Save(submission).Error; err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	s.invalidateStats(ctx, submission.ExamID)
	return nil
}

// UpdateScore sets the score of a submission
func (s *SubmissionPostgreSQL) UpdateScore(ctx context.Context, id uint, score int) error {
	result := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("score", score)
	if result.Error != nil {
		return fmt.Errorf("failed to update score: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByExam retrieves submissions for an exam with total count
func (s *SubmissionPostgreSQL) GetByExam(ctx context.Context, examID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Submission{}).Where("exam_id = ?", examID)

	if filters.CheatingOnly {
		query = query.Where("cheating_detected = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	query = query.Order("submitted_at ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var submissions []*models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, total, nil
}

// GetByStudent retrieves all submissions of a student
func (s *SubmissionPostgreSQL) GetByStudent(ctx context.Context, studentID uint) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions by student: %w", err)
	}
	return submissions, nil
}

// ExistsByExamAndStudent checks whether a submission already exists
func (s *SubmissionPostgreSQL) ExistsByExamAndStudent(ctx context.Context, examID, studentID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check submission existence: %w", err)
	}
	return count > 0, nil
}

// DeleteByExam removes all submissions of an exam
func (s *SubmissionPostgreSQL) DeleteByExam(ctx context.Context, examID uint) error {
	err := s.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Delete(&models.Submission{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete submissions by exam: %w", err)
	}
	s.invalidateStats(ctx, examID)
	return nil
}

// DeleteByStudent removes all submissions of a student
func (s *SubmissionPostgreSQL) DeleteByStudent(ctx context.Context, studentID uint) error {
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&models.Submission{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete submissions by student: %w", err)
	}
	return nil
}

func (s *SubmissionPostgreSQL) invalidateStats(ctx context.Context, examID uint) {
	_ = s.cacheManager.Stats.InvalidatePattern(ctx, fmt.Sprintf("exam:%d*", examID))
}
