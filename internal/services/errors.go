package services

import (
	"errors"

	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Exam specific errors
	ErrExamNotFound     = errors.New("exam not found")
	ErrExamAccessDenied = errors.New("access denied to exam")
	ErrExamNotAssigned  = errors.New("exam is not assigned to this student's group")
	ErrExamNotOpen      = errors.New("exam is not open for submissions")

	// Submission specific errors
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadySubmitted   = errors.New("exam already submitted")
	ErrNotSubmitted       = errors.New("exam has not been submitted")
	ErrResultsLocked      = errors.New("results are locked until the exam ends")

	// Appeal specific errors
	ErrAppealNotFound        = errors.New("appeal not found")
	ErrAppealAlreadyResolved = errors.New("appeal has already been resolved")
	ErrAppealAlreadyPending  = errors.New("a pending appeal already exists for this question")
	ErrAppealNotAllowed      = errors.New("appeal not allowed for this answer")

	// Student specific errors
	ErrStudentNotFound    = errors.New("student not found")
	ErrStudentDisabled    = errors.New("student account is disabled")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Generation specific errors
	ErrGenerationFailed   = errors.New("question generation failed or produced no questions")
	ErrInvalidPDF         = errors.New("invalid or empty PDF document")
	ErrGenerationDisabled = errors.New("question generation is not configured")
)

// ValidationServiceError wraps field-level validation failures so handlers
// can return them with the offending fields attached.
type ValidationServiceError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationServiceError) Error() string {
	return e.Errors.Error()
}

func (e *ValidationServiceError) Unwrap() error {
	return ErrValidationFailed
}

func NewValidationError(errs validator.ValidationErrors) error {
	return &ValidationServiceError{Errors: errs}
}

// ===== ERROR CLASSIFICATION HELPERS =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrAppealNotFound) ||
		errors.Is(err, ErrStudentNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrExamAccessDenied) ||
		errors.Is(err, ErrExamNotAssigned)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrAppealAlreadyResolved) ||
		errors.Is(err, ErrAppealAlreadyPending) ||
		errors.Is(err, ErrUsernameTaken)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}
