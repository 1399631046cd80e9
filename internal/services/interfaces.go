package services

import (
	"context"
	"time"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

// ===== STUDENT-FACING VIEW DTOs =====

// StudentQuestionView is a question as shown to a student taking the exam.
// The correct answer never leaves the server.
type StudentQuestionView struct {
	ID       uint                `json:"id"`
	Position int                 `json:"position"`
	Type     models.QuestionType `json:"type"`
	Text     string              `json:"text"`
	Options  []string            `json:"options,omitempty"`
	ImageURL *string             `json:"image_url,omitempty"`
}

// StudentExamView is the full exam as presented to an assigned student
type StudentExamView struct {
	ID                uint                  `json:"id"`
	Title             string                `json:"title"`
	StartTime         time.Time             `json:"start_time"`
	EndTime           time.Time             `json:"end_time"`
	PointsPerQuestion int                   `json:"points_per_question"`
	Announcement      *string               `json:"announcement,omitempty"`
	Status            models.ExamStatus     `json:"status"`
	Questions         []StudentQuestionView `json:"questions"`
}

// StudentExamSummary is one row of a student's dashboard
type StudentExamSummary struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	QuestionCount int               `json:"question_count"`
	MaxScore      int               `json:"max_score"`
	Status        models.ExamStatus `json:"status"`
	Score         *int              `json:"score,omitempty"`
}

// ===== RESULT DTOs =====

// AnswerResult is the per-question breakdown of a graded submission
type AnswerResult struct {
	QuestionID    uint                `json:"question_id"`
	Position      int                 `json:"position"`
	Type          models.QuestionType `json:"type"`
	Text          string              `json:"text"`
	StudentAnswer string              `json:"student_answer"`
	CorrectAnswer string              `json:"correct_answer"`
	Correct       bool                `json:"correct"`
}

// SubmissionResult is a graded submission with its breakdown
type SubmissionResult struct {
	SubmissionID     uint           `json:"submission_id"`
	ExamID           uint           `json:"exam_id"`
	ExamTitle        string         `json:"exam_title"`
	StudentID        uint           `json:"student_id"`
	SubmittedAt      time.Time      `json:"submitted_at"`
	Score            int            `json:"score"`
	MaxScore         int            `json:"max_score"`
	CheatingDetected bool           `json:"cheating_detected"`
	Answers          []AnswerResult `json:"answers"`
}

// QuestionDraft is a generated question ready for teacher review
type QuestionDraft struct {
	Text          string              `json:"text"`
	Type          models.QuestionType `json:"type"`
	Options       []string            `json:"options,omitempty"`
	CorrectAnswer string              `json:"correct_answer"`
}

// ===== SERVICE INTERFACES =====

// ExamService manages exams and their questions
type ExamService interface {
	Create(ctx context.Context, creatorID string, req *validator.ExamCreateRequest) (*models.Exam, error)
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetWithQuestions(ctx context.Context, id uint) (*models.Exam, error)
	Update(ctx context.Context, id uint, req *validator.ExamUpdateRequest) (*models.Exam, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error)
	GetStats(ctx context.Context, examID uint) (*repositories.ExamStats, error)

	// Student views
	GetForStudent(ctx context.Context, examID, studentID uint) (*StudentExamView, error)
	ListForStudent(ctx context.Context, studentID uint) ([]*StudentExamSummary, error)
}

// SubmissionService manages exam submissions and proctoring
type SubmissionService interface {
	// Submit grades and stores a submission. A second submit for the same
	// exam and student returns ErrAlreadySubmitted; the stored row is never
	// overwritten.
	Submit(ctx context.Context, examID, studentID uint, req *validator.SubmitRequest) (*models.Submission, error)

	// ForceSubmit is triggered by a proctoring violation. It records the
	// event and stores a cheating-flagged submission with the answers given
	// so far. If a submission already exists the stored one is returned.
	ForceSubmit(ctx context.Context, examID, studentID uint, req *validator.SubmitRequest, eventType models.ProctoringEventType, userAgent, ipAddress string) (*models.Submission, error)

	// GetResult is the staff view of a graded submission, available at any
	// time. GetResultForStudent is the student view and returns
	// ErrResultsLocked until the exam window has closed.
	GetResult(ctx context.Context, examID, studentID uint) (*SubmissionResult, error)
	GetResultForStudent(ctx context.Context, examID, studentID uint) (*SubmissionResult, error)
	ListByExam(ctx context.Context, examID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error)
	ListProctoringEvents(ctx context.Context, examID uint) ([]*models.ProctoringEvent, error)
}

// AppealService manages score appeals
type AppealService interface {
	Create(ctx context.Context, studentID uint, req *validator.AppealCreateRequest) (*models.Appeal, error)
	Resolve(ctx context.Context, appealID uint, resolverID string, req *validator.AppealResolveRequest) (*models.Appeal, error)
	GetByID(ctx context.Context, id uint) (*models.Appeal, error)
	List(ctx context.Context, filters repositories.AppealFilters) ([]*models.Appeal, int64, error)
	ListByStudent(ctx context.Context, studentID uint) ([]*models.Appeal, error)
}

// StudentService manages student accounts
type StudentService interface {
	Create(ctx context.Context, req *validator.StudentCreateRequest) (*models.Student, error)
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	Update(ctx context.Context, id uint, req *validator.StudentUpdateRequest) (*models.Student, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.StudentFilters) ([]*models.Student, int64, error)
	ListGroups(ctx context.Context) ([]string, error)

	// Authenticate verifies a username/password pair and returns the active
	// student account it belongs to.
	Authenticate(ctx context.Context, username, password string) (*models.Student, error)
}

// GenerationService produces exam questions from uploaded documents
type GenerationService interface {
	GenerateFromPDF(ctx context.Context, pdfData []byte, numQuestions int) ([]QuestionDraft, error)
}

// ExportService renders exam results for download
type ExportService interface {
	ExportResults(ctx context.Context, examID uint) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

// ServiceManager bundles all services and owns their lifecycle
type ServiceManager interface {
	Exam() ExamService
	Submission() SubmissionService
	Appeal() AppealService
	Student() StudentService
	Generation() GenerationService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
