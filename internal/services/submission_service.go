package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/math-2025/www.riyaziyyat.az/internal/events"
	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

type submissionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewSubmissionService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger) SubmissionService {
	return &submissionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit grades the answers and stores the submission. The insert is
// conditional on no submission existing for this exam and student, so two
// racing requests cannot both win; the loser gets ErrAlreadySubmitted.
func (s *submissionService) Submit(ctx context.Context, examID, studentID uint, req *validator.SubmitRequest) (*models.Submission, error) {
	exam, student, questions, err := s.loadSubmissionContext(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if now.Before(exam.StartTime) || now.After(exam.EndTime) {
		return nil, ErrExamNotOpen
	}

	score, correct := GradeSubmission(questions, req.Answers, exam.PointsPerQuestion)

	submission := &models.Submission{
		ExamID:      examID,
		StudentID:   studentID,
		Answers:     models.NewAnswerMap(req.Answers),
		SubmittedAt: now,
		Score:       score,
	}

	stored, created, err := s.repo.Submission().CreateIfAbsent(ctx, submission)
	if err != nil {
		return nil, err
	}
	if !created {
		return stored, ErrAlreadySubmitted
	}

	maxScore := len(questions) * exam.PointsPerQuestion
	s.publishEvent(ctx, events.NewSubmissionReceivedEvent(
		stored.ID, examID, exam.Title, studentID, stored.SubmittedAt, score, maxScore))

	s.logger.Info("Submission received",
		"exam_id", examID,
		"student_id", studentID,
		"student", student.Name,
		"score", score,
		"correct", correct,
		"max_score", maxScore)

	return stored, nil
}

// ForceSubmit handles a proctoring violation. The event is always recorded;
// the cheating-flagged submission is inserted only if none exists, so
// repeated violations after the first are audit entries, not overwrites.
// The stored score stays ungraded until a teacher reviews the case.
func (s *submissionService) ForceSubmit(ctx context.Context, examID, studentID uint, req *validator.SubmitRequest, eventType models.ProctoringEventType, userAgent, ipAddress string) (*models.Submission, error) {
	if !models.IsKnownProctoringEvent(eventType) {
		return nil, NewValidationError(validator.ValidationErrors{{
			Field:   "type",
			Message: "unknown proctoring event type",
			Value:   eventType,
			Rule:    "business_logic",
		}})
	}

	exam, _, _, err := s.loadSubmissionContext(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	var stored *models.Submission
	var created bool

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		event := &models.ProctoringEvent{
			ExamID:    examID,
			StudentID: studentID,
			Type:      eventType,
			UserAgent: userAgent,
			IPAddress: ipAddress,
		}
		if err := txRepo.Proctoring().Create(ctx, event); err != nil {
			return err
		}

		answers := map[string]string{}
		if req != nil {
			answers = req.Answers
		}

		submission := &models.Submission{
			ExamID:           examID,
			StudentID:        studentID,
			Answers:          models.NewAnswerMap(answers),
			SubmittedAt:      time.Now(),
			CheatingDetected: true,
			Score:            models.ScoreUngraded,
		}

		var txErr error
		stored, created, txErr = txRepo.Submission().CreateIfAbsent(ctx, submission)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to force-submit: %w", err)
	}

	if created {
		s.publishEvent(ctx, events.NewCheatingDetectedEvent(
			stored.ID, examID, exam.Title, studentID, string(eventType)))

		s.logger.Warn("Cheating detected, submission forced",
			"exam_id", examID,
			"student_id", studentID,
			"event_type", eventType)
	}

	return stored, nil
}

// GetResultForStudent returns the graded submission once the exam window
// has closed. Before that the breakdown would expose correct answers while
// classmates are still taking the exam, so the result stays locked.
func (s *submissionService) GetResultForStudent(ctx context.Context, examID, studentID uint) (*SubmissionResult, error) {
	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	if time.Now().Before(exam.EndTime) {
		return nil, ErrResultsLocked
	}

	return s.GetResult(ctx, examID, studentID)
}

// GetResult returns the graded submission with a per-question breakdown
func (s *submissionService) GetResult(ctx context.Context, examID, studentID uint) (*SubmissionResult, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	submission, err := s.repo.Submission().GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotSubmitted
		}
		return nil, err
	}

	result := &SubmissionResult{
		SubmissionID:     submission.ID,
		ExamID:           exam.ID,
		ExamTitle:        exam.Title,
		StudentID:        studentID,
		SubmittedAt:      submission.SubmittedAt,
		Score:            submission.Score,
		MaxScore:         exam.MaxScore(),
		CheatingDetected: submission.CheatingDetected,
		Answers:          make([]AnswerResult, 0, len(exam.Questions)),
	}

	for i := range exam.Questions {
		q := &exam.Questions[i]
		given, _ := submission.AnswerFor(q.ID)
		result.Answers = append(result.Answers, AnswerResult{
			QuestionID:    q.ID,
			Position:      q.Position,
			Type:          q.Type,
			Text:          q.Text,
			StudentAnswer: given,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       answerMatches(given, q.CorrectAnswer),
		})
	}

	return result, nil
}

func (s *submissionService) ListByExam(ctx context.Context, examID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	if _, err := s.repo.Exam().GetByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrExamNotFound
		}
		return nil, 0, err
	}
	return s.repo.Submission().GetByExam(ctx, examID, filters)
}

func (s *submissionService) ListProctoringEvents(ctx context.Context, examID uint) ([]*models.ProctoringEvent, error) {
	return s.repo.Proctoring().GetByExam(ctx, examID)
}

// loadSubmissionContext loads and authorizes everything a submission needs:
// an active student, an exam assigned to the student's group, and the
// question set.
func (s *submissionService) loadSubmissionContext(ctx context.Context, examID, studentID uint) (*models.Exam, *models.Student, []*models.Question, error) {
	student, err := s.repo.Student().GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrStudentNotFound
		}
		return nil, nil, nil, err
	}
	if !student.IsActive() {
		return nil, nil, nil, ErrStudentDisabled
	}

	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrExamNotFound
		}
		return nil, nil, nil, err
	}

	if !exam.IsAssignedTo(student.Group) {
		return nil, nil, nil, ErrExamNotAssigned
	}

	questions, err := s.repo.Exam().GetQuestions(ctx, examID)
	if err != nil {
		return nil, nil, nil, err
	}

	return exam, student, questions, nil
}

func (s *submissionService) publishEvent(ctx context.Context, event *events.NotificationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish event", "event_type", event.Type)
	}
}
