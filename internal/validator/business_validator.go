package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._]{3,50}$`)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateExamCreate validates exam creation business rules
func (bv *BusinessValidator) ValidateExamCreate(req *ExamCreateRequest) ValidationErrors {
	var errors ValidationErrors

	// Basic struct validation
	errors = append(errors, bv.Validate(req)...)

	// Exam window must be a positive interval
	if !req.EndTime.After(req.StartTime) {
		errors = append(errors, ValidationError{
			Field:   "end_time",
			Message: "must be after start_time",
			Value:   req.EndTime,
			Rule:    "business_logic",
		})
	}

	for i := range req.Questions {
		errors = append(errors, bv.validateQuestionRules(&req.Questions[i], i)...)
	}

	return errors
}

// ValidateQuestionCreate validates a single question's business rules
func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateQuestionRules(req, 0)...)

	return errors
}

// ValidateExamUpdate validates exam update business rules
func (bv *BusinessValidator) ValidateExamUpdate(req *ExamUpdateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateStudentCreate validates student creation business rules
func (bv *BusinessValidator) ValidateStudentCreate(req *StudentCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateStudentUpdate validates student update business rules
func (bv *BusinessValidator) ValidateStudentUpdate(req *StudentUpdateRequest) ValidationErrors {
	return bv.Validate(req)
}

// validateQuestionRules checks the per-type question invariants: a
// multiple-choice question carries exactly five distinct options including
// the correct answer, a free-form question carries none.
func (bv *BusinessValidator) validateQuestionRules(req *QuestionCreateRequest, index int) ValidationErrors {
	var errors ValidationErrors
	field := fmt.Sprintf("questions[%d]", index)

	switch req.Type {
	case models.MultipleChoice:
		if len(req.Options) != models.MultipleChoiceOptionCount {
			errors = append(errors, ValidationError{
				Field:   field + ".options",
				Message: fmt.Sprintf("multiple-choice question must have exactly %d options", models.MultipleChoiceOptionCount),
				Value:   len(req.Options),
				Rule:    "business_logic",
			})
			return errors
		}

		seen := make(map[string]bool, len(req.Options))
		containsAnswer := false
		for _, opt := range req.Options {
			if seen[opt] {
				errors = append(errors, ValidationError{
					Field:   field + ".options",
					Message: "options must be distinct",
					Value:   opt,
					Rule:    "business_logic",
				})
			}
			seen[opt] = true
			if opt == req.CorrectAnswer {
				containsAnswer = true
			}
		}

		if !containsAnswer {
			errors = append(errors, ValidationError{
				Field:   field + ".correct_answer",
				Message: "must be one of the options",
				Value:   req.CorrectAnswer,
				Rule:    "business_logic",
			})
		}

	case models.FreeForm:
		if len(req.Options) > 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".options",
				Message: "free-form question must not have options",
				Value:   len(req.Options),
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Title validation (1-200 characters)
	bv.validate.RegisterValidation("exam_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Points per question validation (1-100)
	bv.validate.RegisterValidation("points_per_question", func(fl validator.FieldLevel) bool {
		points := fl.Field().Int()
		return points >= 1 && points <= 100
	})

	// Question type validation
	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		qt := models.QuestionType(fl.Field().String())
		return qt == models.MultipleChoice || qt == models.FreeForm
	})

	// Username format validation
	bv.validate.RegisterValidation("username_format", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
}
