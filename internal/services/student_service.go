package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

type studentService struct {
	repo      repositories.Repository
	validator *validator.BusinessValidator
	logger    utils.Logger
}

func NewStudentService(repo repositories.Repository, bv *validator.BusinessValidator, logger utils.Logger) StudentService {
	return &studentService{
		repo:      repo,
		validator: bv,
		logger:    logger,
	}
}

// Create registers a new student account with a bcrypt-hashed password
func (s *studentService) Create(ctx context.Context, req *validator.StudentCreateRequest) (*models.Student, error) {
	if errs := s.validator.ValidateStudentCreate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	taken, err := s.repo.Student().ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student := &models.Student{
		Name:          req.Name,
		Group:         req.Group,
		Class:         req.Class,
		ParentContact: req.ParentContact,
		Username:      req.Username,
		PasswordHash:  string(hash),
		Status:        models.StudentActive,
	}

	if err := s.repo.Student().Create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info("Student created",
		"student_id", student.ID,
		"username", student.Username,
		"group", student.Group)

	return student, nil
}

func (s *studentService) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	student, err := s.repo.Student().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (s *studentService) Update(ctx context.Context, id uint, req *validator.StudentUpdateRequest) (*models.Student, error) {
	if errs := s.validator.ValidateStudentUpdate(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	student, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Group != nil {
		student.Group = *req.Group
	}
	if req.Class != nil {
		student.Class = *req.Class
	}
	if req.ParentContact != nil {
		student.ParentContact = req.ParentContact
	}
	if req.Status != nil {
		student.Status = *req.Status
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		student.PasswordHash = string(hash)
	}

	if err := s.repo.Student().Update(ctx, student); err != nil {
		return nil, err
	}

	return student, nil
}

// Delete removes a student and everything that hangs off the account
func (s *studentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Appeal().DeleteByStudent(ctx, id); err != nil {
			return err
		}
		if err := txRepo.Proctoring().DeleteByStudent(ctx, id); err != nil {
			return err
		}
		if err := txRepo.Submission().DeleteByStudent(ctx, id); err != nil {
			return err
		}
		return txRepo.Student().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	s.logger.Info("Student deleted", "student_id", id)
	return nil
}

func (s *studentService) List(ctx context.Context, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	return s.repo.Student().List(ctx, filters)
}

func (s *studentService) ListGroups(ctx context.Context) ([]string, error) {
	return s.repo.Student().ListGroups(ctx)
}

// Authenticate verifies credentials. Unknown usernames and wrong passwords
// collapse into one generic error so the response does not leak which part
// was wrong. A disabled account with a valid password gets the distinct
// ErrStudentDisabled; the password check runs first, so a disabled account
// with a wrong password still reports invalid credentials.
func (s *studentService) Authenticate(ctx context.Context, username, password string) (*models.Student, error) {
	student, err := s.repo.Student().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !student.IsActive() {
		return nil, ErrStudentDisabled
	}

	return student, nil
}
