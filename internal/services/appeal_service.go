package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/math-2025/www.riyaziyyat.az/internal/events"
	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

type appealService struct {
	repo      repositories.Repository
	validator *validator.BusinessValidator
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewAppealService(repo repositories.Repository, bv *validator.BusinessValidator, publisher events.EventPublisher, logger utils.Logger) AppealService {
	return &appealService{
		repo:      repo,
		validator: bv,
		publisher: publisher,
		logger:    logger,
	}
}

// Create opens an appeal for one question of the student's own graded
// submission. Only answers that were marked incorrect can be appealed, and
// only once while a pending appeal is open for that question.
func (s *appealService) Create(ctx context.Context, studentID uint, req *validator.AppealCreateRequest) (*models.Appeal, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	student, err := s.repo.Student().GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, req.ExamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	var question *models.Question
	for i := range exam.Questions {
		if exam.Questions[i].ID == req.QuestionID {
			question = &exam.Questions[i]
			break
		}
	}
	if question == nil {
		return nil, ErrNotFound
	}

	submission, err := s.repo.Submission().GetByExamAndStudent(ctx, req.ExamID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotSubmitted
		}
		return nil, err
	}

	if submission.Score == models.ScoreUngraded || submission.CheatingDetected {
		return nil, ErrAppealNotAllowed
	}

	given, _ := submission.AnswerFor(question.ID)
	if answerMatches(given, question.CorrectAnswer) {
		// Nothing to dispute on a correct answer
		return nil, ErrAppealNotAllowed
	}

	pending, err := s.repo.Appeal().ExistsPending(ctx, req.ExamID, studentID, req.QuestionID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrAppealAlreadyPending
	}

	appeal := &models.Appeal{
		ExamID:               req.ExamID,
		StudentID:            studentID,
		QuestionID:           req.QuestionID,
		StudentJustification: req.Justification,
		Status:               models.AppealPending,
		ExamTitle:            exam.Title,
		QuestionText:         question.Text,
		StudentName:          student.Name,
	}

	if err := s.repo.Appeal().Create(ctx, appeal); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewAppealCreatedEvent(
		appeal.ID, exam.ID, exam.Title, studentID, question.ID))

	s.logger.Info("Appeal created",
		"appeal_id", appeal.ID,
		"exam_id", exam.ID,
		"student_id", studentID,
		"question_id", question.ID)

	return appeal, nil
}

// Resolve decides an appeal. The whole decision runs in one transaction:
// the appeal is re-read inside it, a second resolution attempt fails with
// ErrAppealAlreadyResolved, and an approval adjusts the submission score in
// the same transaction so the points can never be granted twice.
func (s *appealService) Resolve(ctx context.Context, appealID uint, resolverID string, req *validator.AppealResolveRequest) (*models.Appeal, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	var resolved *models.Appeal
	var newScore *int

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		appeal, err := txRepo.Appeal().GetByID(ctx, appealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppealNotFound
			}
			return err
		}

		if appeal.IsResolved() {
			return ErrAppealAlreadyResolved
		}

		if req.Approve {
			appeal.Status = models.AppealApproved

			exam, err := txRepo.Exam().GetByID(ctx, appeal.ExamID)
			if err != nil {
				return fmt.Errorf("failed to load exam for appeal: %w", err)
			}

			submission, err := txRepo.Submission().GetByExamAndStudent(ctx, appeal.ExamID, appeal.StudentID)
			if err != nil {
				return fmt.Errorf("failed to load submission for appeal: %w", err)
			}

			if submission.Score != models.ScoreUngraded {
				score := submission.Score + exam.PointsPerQuestion
				if err := txRepo.Submission().UpdateScore(ctx, submission.ID, score); err != nil {
					return err
				}
				newScore = &score
			}
		} else {
			appeal.Status = models.AppealRejected
		}

		appeal.TeacherResponse = req.Response

		if err := txRepo.Appeal().Update(ctx, appeal); err != nil {
			return err
		}

		resolved = appeal
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewAppealResolvedEvent(
		resolved.ID, resolved.ExamID, resolved.ExamTitle,
		resolved.StudentID, resolved.QuestionID, req.Approve, newScore))

	s.logger.Info("Appeal resolved",
		"appeal_id", resolved.ID,
		"approved", req.Approve,
		"resolver", resolverID)

	return resolved, nil
}

func (s *appealService) GetByID(ctx context.Context, id uint) (*models.Appeal, error) {
	appeal, err := s.repo.Appeal().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppealNotFound
		}
		return nil, err
	}
	return appeal, nil
}

func (s *appealService) List(ctx context.Context, filters repositories.AppealFilters) ([]*models.Appeal, int64, error) {
	return s.repo.Appeal().List(ctx, filters)
}

func (s *appealService) ListByStudent(ctx context.Context, studentID uint) ([]*models.Appeal, error) {
	return s.repo.Appeal().GetByStudent(ctx, studentID)
}

func (s *appealService) publishEvent(ctx context.Context, event *events.NotificationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish event", "event_type", event.Type)
	}
}
