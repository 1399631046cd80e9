package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/math-2025/www.riyaziyyat.az/internal/cache"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories/casdoor"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	exam       repositories.ExamRepository
	submission repositories.SubmissionRepository
	proctoring repositories.ProctoringRepository
	appeal     repositories.AppealRepository
	student    repositories.StudentRepository
	user       repositories.UserRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB            *gorm.DB
	RedisClient   *redis.Client
	CasdoorConfig casdoor.CasdoorConfig
}

// NewPostgreSQLRepository creates a repository bundle with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.exam = NewExamPostgreSQL(config.DB, cacheManager)
	repo.submission = NewSubmissionPostgreSQL(config.DB, cacheManager)
	repo.proctoring = NewProctoringPostgreSQL(config.DB)
	repo.appeal = NewAppealPostgreSQL(config.DB)
	repo.student = NewStudentPostgreSQL(config.DB, cacheManager)

	// Staff identities live in Casdoor
	repo.user = casdoor.NewUserCasdoor(config.CasdoorConfig, config.RedisClient)

	return repo
}

func (r *PostgreSQLRepository) Exam() repositories.ExamRepository {
	return r.exam
}

func (r *PostgreSQLRepository) Submission() repositories.SubmissionRepository {
	return r.submission
}

func (r *PostgreSQLRepository) Proctoring() repositories.ProctoringRepository {
	return r.proctoring
}

func (r *PostgreSQLRepository) Appeal() repositories.AppealRepository {
	return r.appeal
}

func (r *PostgreSQLRepository) Student() repositories.StudentRepository {
	return r.student
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		txRepo.exam = NewExamPostgreSQL(tx, r.cacheManager)
		txRepo.submission = NewSubmissionPostgreSQL(tx, r.cacheManager)
		txRepo.proctoring = NewProctoringPostgreSQL(tx)
		txRepo.appeal = NewAppealPostgreSQL(tx)
		txRepo.student = NewStudentPostgreSQL(tx, r.cacheManager)

		// External user repository does not participate in transactions
		txRepo.user = r.user

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// Manager implements the RepositoryManager interface
type Manager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &Manager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (m *Manager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := m.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if m.config.RedisClient != nil {
		if _, err := m.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	m.repo = NewPostgreSQLRepository(m.config)

	return nil
}

// GetRepository returns the repository instance
func (m *Manager) GetRepository() repositories.Repository {
	return m.repo
}

// HealthCheck checks the health of all repository connections
func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return m.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}

	return m.repo.Close()
}
