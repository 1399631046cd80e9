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

type ExamPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewExamPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ExamRepository {
	return &ExamPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// Create creates a new exam together with its questions
func (e *ExamPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	if err := e.db.WithContext(ctx).Create(exam).Error; err != nil {
		return fmt.Errorf("failed to create exam: %w", err)
	}

	e.invalidate(ctx, exam.ID)
	return nil
}

// GetByID retrieves an exam by ID with caching
func (e *ExamPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var exam models.Exam

	err := e.cacheManager.Exam.CacheOrExecute(ctx, cacheKey, &exam, cache.ExamCacheConfig.TTL, func() (interface{}, error) {
		var dbExam models.Exam
		if err := e.db.WithContext(ctx).First(&dbExam, id).Error; err != nil {
			return nil, err
		}
		return &dbExam, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	return &exam, nil
}

// GetByIDWithQuestions retrieves an exam with its questions in position order
func (e *ExamPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	err := e.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		First(&exam, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get exam with questions: %w", err)
	}

	exam.QuestionCount = len(exam.Questions)
	return &exam, nil
}

// Update updates the mutable exam fields and invalidates cache
func (e *ExamPostgreSQL) Update(ctx context.Context, exam *models.Exam) error {
	err := e.db.WithContext(ctx).Model(&models.Exam{}).Where("id = ?", exam.ID).Updates(map[string]interface{}{
		"title":               exam.Title,
		"assigned_groups":     exam.AssignedGroups,
		"start_time":          exam.StartTime,
		"end_time":            exam.EndTime,
		"points_per_question": exam.PointsPerQuestion,
		"announcement":        exam.Announcement,
		"updated_at":          exam.UpdatedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update exam: %w", err)
	}

	e.invalidate(ctx, exam.ID)
	return nil
}

// Delete hard deletes an exam. Dependent rows are removed by the service
// inside the same transaction.
func (e *ExamPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := e.db.WithContext(ctx).Unscoped().Delete(&models.Exam{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete exam: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	e.invalidate(ctx, id)
	return nil
}

// List retrieves exams matching filters with total count
func (e *ExamPostgreSQL) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	query := e.db.WithContext(ctx).Model(&models.Exam{})

	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Group != nil {
		query = query.Where("assigned_groups @> ?", fmt.Sprintf(`["%s"]`, *filters.Group))
	}
	if filters.DateFrom != nil {
		query = query.Where("start_time >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("start_time <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exams: %w", err)
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var exams []*models.Exam
	if err := query.Find(&exams).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list exams: %w", err)
	}

	return exams, total, nil
}

// GetByGroup retrieves all exams assigned to a student group
func (e *ExamPostgreSQL) GetByGroup(ctx context.Context, group string) ([]*models.Exam, error) {
	var exams []*models.Exam
	err := e.db.WithContext(ctx).
		Where("assigned_groups @> ?", fmt.Sprintf(`["%s"]`, group)).
		Order("start_time DESC").
		Find(&exams).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get exams by group: %w", err)
	}

	return exams, nil
}

// CreateQuestions inserts a batch of questions
func (e *ExamPostgreSQL) CreateQuestions(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	if err := e.db.WithContext(ctx).Create(&questions).Error; err != nil {
		return fmt.Errorf("failed to create questions: %w", err)
	}
	return nil
}

// GetQuestions retrieves questions for an exam in position order
func (e *ExamPostgreSQL) GetQuestions(ctx context.Context, examID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := e.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("position ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return questions, nil
}

// ReplaceQuestions swaps the question set of an exam
func (e *ExamPostgreSQL) ReplaceQuestions(ctx context.Context, examID uint, questions []*models.Question) error {
	if err := e.DeleteQuestions(ctx, examID); err != nil {
		return err
	}
	for i := range questions {
		questions[i].ExamID = examID
		questions[i].Position = i
	}
	return e.CreateQuestions(ctx, questions)
}

// DeleteQuestions removes all questions of an exam
func (e *ExamPostgreSQL) DeleteQuestions(ctx context.Context, examID uint) error {
	err := e.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Delete(&models.Question{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	return nil
}

// GetStats computes aggregate statistics for an exam with caching
func (e *ExamPostgreSQL) GetStats(ctx context.Context, examID uint) (*repositories.ExamStats, error) {
	cacheKey := fmt.Sprintf("exam:%d", examID)
	var stats repositories.ExamStats

	err := e.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var result repositories.ExamStats

		row := e.db.WithContext(ctx).
			Model(&models.Submission{}).
			Select("COUNT(*) AS submission_count, COALESCE(AVG(score) FILTER (WHERE score >= 0), 0) AS average_score, COALESCE(MAX(score), 0) AS max_score, COUNT(*) FILTER (WHERE cheating_detected) AS cheating_count").
			Where("exam_id = ?", examID).
			Row()
		if err := row.Scan(&result.SubmissionCount, &result.AverageScore, &result.MaxScore, &result.CheatingCount); err != nil {
			return nil, err
		}

		var pending int64
		err := e.db.WithContext(ctx).
			Model(&models.Appeal{}).
			Where("exam_id = ? AND status = ?", examID, models.AppealPending).
			Count(&pending).Error
		if err != nil {
			return nil, err
		}
		result.PendingAppeals = int(pending)

		return &result, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get exam stats: %w", err)
	}

	return &stats, nil
}

// CountQuestions counts the questions of an exam
func (e *ExamPostgreSQL) CountQuestions(ctx context.Context, examID uint) (int64, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("exam_id = ?", examID).
		Count(&count).Error
	return count, err
}

func (e *ExamPostgreSQL) invalidate(ctx context.Context, examID uint) {
	if err := e.cacheManager.InvalidateExam(ctx, examID); err != nil {
		// Stale cache entries expire on their own; a failed invalidation is
		// not worth failing the write for.
		return
	}
}
