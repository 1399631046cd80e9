package services

import (
	"context"
	"encoding/json"
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

type examService struct {
	repo      repositories.Repository
	validator *validator.BusinessValidator
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewExamService(repo repositories.Repository, bv *validator.BusinessValidator, publisher events.EventPublisher, logger utils.Logger) ExamService {
	return &examService{
		repo:      repo,
		validator: bv,
		publisher: publisher,
		logger:    logger,
	}
}

// Create stores a new exam and its questions in one transaction
func (s *examService) Create(ctx context.Context, creatorID string, req *validator.ExamCreateRequest) (*models.Exam, error) {
	if errs := s.validator.ValidateExamCreate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	groupsJSON, err := json.Marshal(req.AssignedGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to encode assigned groups: %w", err)
	}

	exam := &models.Exam{
		Title:             req.Title,
		AssignedGroups:    groupsJSON,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		PointsPerQuestion: req.PointsPerQuestion,
		Announcement:      req.Announcement,
		CreatedBy:         creatorID,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Exam().Create(ctx, exam); err != nil {
			return err
		}

		questions := make([]*models.Question, 0, len(req.Questions))
		for i, qr := range req.Questions {
			question, err := buildQuestion(exam.ID, i, &qr)
			if err != nil {
				return err
			}
			questions = append(questions, question)
		}

		return txRepo.Exam().CreateQuestions(ctx, questions)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	exam.QuestionCount = len(req.Questions)

	s.publishEvent(ctx, events.NewExamCreatedEvent(
		exam.ID, exam.Title, exam.StartTime, exam.EndTime, req.AssignedGroups, creatorID))

	s.logger.Info("Exam created",
		"exam_id", exam.ID,
		"title", exam.Title,
		"questions", exam.QuestionCount,
		"creator", creatorID)

	return exam, nil
}

func buildQuestion(examID uint, position int, req *validator.QuestionCreateRequest) (*models.Question, error) {
	question := &models.Question{
		ExamID:        examID,
		Position:      position,
		Type:          req.Type,
		Text:          req.Text,
		CorrectAnswer: req.CorrectAnswer,
		ImageURL:      req.ImageURL,
	}

	if req.Type == models.MultipleChoice {
		optionsJSON, err := json.Marshal(req.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		question.Options = optionsJSON
	}

	return question, nil
}

func (s *examService) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

func (s *examService) GetWithQuestions(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

// Update changes the announcement and group assignment of an exam. The
// question set and the window are immutable once students can see the exam.
func (s *examService) Update(ctx context.Context, id uint, req *validator.ExamUpdateRequest) (*models.Exam, error) {
	if errs := s.validator.ValidateExamUpdate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Announcement != nil {
		exam.Announcement = req.Announcement
	}
	if len(req.AssignedGroups) > 0 {
		groupsJSON, err := json.Marshal(req.AssignedGroups)
		if err != nil {
			return nil, fmt.Errorf("failed to encode assigned groups: %w", err)
		}
		exam.AssignedGroups = groupsJSON
	}
	exam.UpdatedAt = time.Now()

	if err := s.repo.Exam().Update(ctx, exam); err != nil {
		return nil, err
	}

	return exam, nil
}

// Delete removes an exam and everything that hangs off it in one transaction
func (s *examService) Delete(ctx context.Context, id uint) error {
	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Appeal().DeleteByExam(ctx, id); err != nil {
			return err
		}
		if err := txRepo.Proctoring().DeleteByExam(ctx, id); err != nil {
			return err
		}
		if err := txRepo.Submission().DeleteByExam(ctx, id); err != nil {
			return err
		}
		if err := txRepo.Exam().DeleteQuestions(ctx, id); err != nil {
			return err
		}
		return txRepo.Exam().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.publishEvent(ctx, events.NewExamDeletedEvent(exam.ID, exam.Title, exam.CreatedBy))

	s.logger.Info("Exam deleted", "exam_id", id, "title", exam.Title)
	return nil
}

func (s *examService) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	return s.repo.Exam().List(ctx, filters)
}

func (s *examService) GetStats(ctx context.Context, examID uint) (*repositories.ExamStats, error) {
	if _, err := s.GetByID(ctx, examID); err != nil {
		return nil, err
	}
	return s.repo.Exam().GetStats(ctx, examID)
}

// GetForStudent returns the exam as the student is allowed to see it. The
// correct answers are stripped and the status is derived server-side.
func (s *examService) GetForStudent(ctx context.Context, examID, studentID uint) (*StudentExamView, error) {
	student, err := s.repo.Student().GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	exam, err := s.GetWithQuestions(ctx, examID)
	if err != nil {
		return nil, err
	}

	if !exam.IsAssignedTo(student.Group) {
		return nil, ErrExamNotAssigned
	}

	submission, err := s.findSubmission(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	view := &StudentExamView{
		ID:                exam.ID,
		Title:             exam.Title,
		StartTime:         exam.StartTime,
		EndTime:           exam.EndTime,
		PointsPerQuestion: exam.PointsPerQuestion,
		Announcement:      exam.Announcement,
		Status:            DeriveStatus(exam.StartTime, exam.EndTime, time.Now(), submission),
		Questions:         make([]StudentQuestionView, 0, len(exam.Questions)),
	}

	for i := range exam.Questions {
		q := &exam.Questions[i]
		view.Questions = append(view.Questions, StudentQuestionView{
			ID:       q.ID,
			Position: q.Position,
			Type:     q.Type,
			Text:     q.Text,
			Options:  q.OptionList(),
			ImageURL: q.ImageURL,
		})
	}

	return view, nil
}

// ListForStudent builds the student dashboard: every exam assigned to the
// student's group with a derived status and, once the window closes, the
// score.
func (s *examService) ListForStudent(ctx context.Context, studentID uint) ([]*StudentExamSummary, error) {
	student, err := s.repo.Student().GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	exams, err := s.repo.Exam().GetByGroup(ctx, student.Group)
	if err != nil {
		return nil, err
	}

	submissions, err := s.repo.Submission().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	byExam := make(map[uint]*models.Submission, len(submissions))
	for _, sub := range submissions {
		byExam[sub.ExamID] = sub
	}

	now := time.Now()
	summaries := make([]*StudentExamSummary, 0, len(exams))
	for _, exam := range exams {
		questionCount, err := s.repo.Exam().CountQuestions(ctx, exam.ID)
		if err != nil {
			return nil, err
		}

		submission := byExam[exam.ID]
		summary := &StudentExamSummary{
			ID:            exam.ID,
			Title:         exam.Title,
			StartTime:     exam.StartTime,
			EndTime:       exam.EndTime,
			QuestionCount: int(questionCount),
			MaxScore:      int(questionCount) * exam.PointsPerQuestion,
			Status:        DeriveStatus(exam.StartTime, exam.EndTime, now, submission),
		}
		// The score is shown only once the window has closed and results
		// are unlocked.
		if summary.Status == models.ExamStatusCompleted && submission.Score != models.ScoreUngraded {
			score := submission.Score
			summary.Score = &score
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (s *examService) findSubmission(ctx context.Context, examID, studentID uint) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return submission, nil
}

// publishEvent sends a notification event without failing the request.
func (s *examService) publishEvent(ctx context.Context, event *events.NotificationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish event", "event_type", event.Type)
	}
}
