package repositories

import "context"

// Repository aggregates all repository interfaces
type Repository interface {
	// Exam domain (exams own their questions)
	Exam() ExamRepository

	// Submission domain
	Submission() SubmissionRepository
	Proctoring() ProctoringRepository

	// Appeal domain
	Appeal() AppealRepository

	// Student accounts
	Student() StudentRepository

	// Staff users (read-only, backed by Casdoor)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
