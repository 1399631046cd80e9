package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/math-2025/www.riyaziyyat.az/internal/events"
	"github.com/math-2025/www.riyaziyyat.az/internal/genai"
	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

// DefaultServiceManager wires every service over one shared repository
// bundle and owns migrations and shutdown.
type DefaultServiceManager struct {
	db        *gorm.DB
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger

	exam       ExamService
	submission SubmissionService
	appeal     AppealService
	student    StudentService
	generation GenerationService
	export     ExportService
}

// NewServiceManager builds the service layer. genaiClient may be nil when
// question generation is not configured; the generation service then
// reports ErrGenerationDisabled instead of failing at startup.
func NewServiceManager(
	db *gorm.DB,
	repo repositories.Repository,
	publisher events.EventPublisher,
	genaiClient *genai.Client,
	logger utils.Logger,
) *DefaultServiceManager {
	bv := validator.NewBusinessValidator()

	return &DefaultServiceManager{
		db:         db,
		repo:       repo,
		publisher:  publisher,
		logger:     logger,
		exam:       NewExamService(repo, bv, publisher, logger),
		submission: NewSubmissionService(repo, publisher, logger),
		appeal:     NewAppealService(repo, bv, publisher, logger),
		student:    NewStudentService(repo, bv, logger),
		generation: NewGenerationService(genaiClient, logger),
		export:     NewExportService(repo, logger),
	}
}

func (m *DefaultServiceManager) Exam() ExamService             { return m.exam }
func (m *DefaultServiceManager) Submission() SubmissionService { return m.submission }
func (m *DefaultServiceManager) Appeal() AppealService         { return m.appeal }
func (m *DefaultServiceManager) Student() StudentService       { return m.student }
func (m *DefaultServiceManager) Generation() GenerationService { return m.generation }
func (m *DefaultServiceManager) Export() ExportService         { return m.export }

// Initialize runs schema migrations
func (m *DefaultServiceManager) Initialize(ctx context.Context) error {
	err := m.db.WithContext(ctx).AutoMigrate(
		&models.Exam{},
		&models.Question{},
		&models.Submission{},
		&models.ProctoringEvent{},
		&models.Appeal{},
		&models.Student{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.logger.Info("Service manager initialized")
	return nil
}

func (m *DefaultServiceManager) HealthCheck(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

func (m *DefaultServiceManager) Shutdown(ctx context.Context) error {
	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			m.logger.LogError(err, "Failed to close event publisher")
		}
	}
	if err := m.repo.Close(); err != nil {
		return fmt.Errorf("failed to close repository: %w", err)
	}

	m.logger.Info("Service manager shut down")
	return nil
}
