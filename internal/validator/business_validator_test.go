package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

func mcQuestion() QuestionCreateRequest {
	return QuestionCreateRequest{
		Type:          models.MultipleChoice,
		Text:          "Sum of triangle angles?",
		Options:       []string{"90", "120", "180", "270", "360"},
		CorrectAnswer: "180",
	}
}

func TestValidateQuestionCreate(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		mutate  func(*QuestionCreateRequest)
		wantErr bool
	}{
		{"valid multiple choice", func(q *QuestionCreateRequest) {}, false},
		{"too few options", func(q *QuestionCreateRequest) {
			q.Options = []string{"90", "180"}
		}, true},
		{"too many options", func(q *QuestionCreateRequest) {
			q.Options = append(q.Options, "45")
		}, true},
		{"duplicate options", func(q *QuestionCreateRequest) {
			q.Options = []string{"90", "90", "180", "270", "360"}
		}, true},
		{"answer not among options", func(q *QuestionCreateRequest) {
			q.CorrectAnswer = "42"
		}, true},
		{"unknown type", func(q *QuestionCreateRequest) {
			q.Type = models.QuestionType("essay")
		}, true},
		{"empty text", func(q *QuestionCreateRequest) {
			q.Text = ""
		}, true},
		{"free form without options", func(q *QuestionCreateRequest) {
			q.Type = models.FreeForm
			q.Options = nil
		}, false},
		{"free form with options", func(q *QuestionCreateRequest) {
			q.Type = models.FreeForm
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mcQuestion()
			tt.mutate(&q)
			errs := bv.ValidateQuestionCreate(&q)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateQuestionCreate() errors = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestValidateExamCreate(t *testing.T) {
	bv := NewBusinessValidator()
	now := time.Now()

	valid := func() *ExamCreateRequest {
		return &ExamCreateRequest{
			Title:             "Algebra Midterm",
			AssignedGroups:    []string{"9A"},
			StartTime:         now.Add(time.Hour),
			EndTime:           now.Add(2 * time.Hour),
			PointsPerQuestion: 10,
			Questions:         []QuestionCreateRequest{mcQuestion()},
		}
	}

	t.Run("valid request", func(t *testing.T) {
		if errs := bv.ValidateExamCreate(valid()); len(errs) > 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		req := valid()
		req.EndTime = req.StartTime.Add(-time.Minute)
		errs := bv.ValidateExamCreate(req)
		if len(errs) == 0 {
			t.Fatal("expected validation error")
		}
		if errs[0].Field != "end_time" {
			t.Errorf("expected end_time error, got %s", errs[0].Field)
		}
	})

	t.Run("zero-length window", func(t *testing.T) {
		req := valid()
		req.EndTime = req.StartTime
		if errs := bv.ValidateExamCreate(req); len(errs) == 0 {
			t.Error("expected validation error for equal start and end")
		}
	})

	t.Run("whitespace-only title", func(t *testing.T) {
		req := valid()
		req.Title = "   "
		if errs := bv.ValidateExamCreate(req); len(errs) == 0 {
			t.Error("expected validation error for blank title")
		}
	})

	t.Run("title too long", func(t *testing.T) {
		req := valid()
		req.Title = strings.Repeat("x", 201)
		if errs := bv.ValidateExamCreate(req); len(errs) == 0 {
			t.Error("expected validation error for oversized title")
		}
	})

	t.Run("points out of range", func(t *testing.T) {
		req := valid()
		req.PointsPerQuestion = 101
		if errs := bv.ValidateExamCreate(req); len(errs) == 0 {
			t.Error("expected validation error for points above 100")
		}
	})

	t.Run("no groups", func(t *testing.T) {
		req := valid()
		req.AssignedGroups = nil
		if errs := bv.ValidateExamCreate(req); len(errs) == 0 {
			t.Error("expected validation error for missing groups")
		}
	})

	t.Run("no questions", func(t *testing.T) {
		req := valid()
		req.Questions = nil
		if errs := bv.ValidateExamCreate(req); len(errs) == 0 {
			t.Error("expected validation error for missing questions")
		}
	})

	t.Run("faulty question index is reported", func(t *testing.T) {
		req := valid()
		bad := mcQuestion()
		bad.Options = []string{"1", "2"}
		req.Questions = append(req.Questions, bad)

		errs := bv.ValidateExamCreate(req)
		if len(errs) == 0 {
			t.Fatal("expected validation error")
		}
		found := false
		for _, e := range errs {
			if strings.HasPrefix(e.Field, "questions[1]") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected error on questions[1], got %v", errs)
		}
	})
}

func TestUsernameFormat(t *testing.T) {
	bv := NewBusinessValidator()

	base := func() *StudentCreateRequest {
		return &StudentCreateRequest{
			Name:     "Test Student",
			Group:    "9A",
			Class:    "9A-1",
			Username: "valid.name_1",
			Password: "secret-pass",
		}
	}

	tests := []struct {
		username string
		valid    bool
	}{
		{"valid.name_1", true},
		{"abc", true},
		{"ab", false},
		{"with space", false},
		{"dash-not-ok", false},
		{"ünïcode", false},
		{strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			req := base()
			req.Username = tt.username
			errs := bv.ValidateStudentCreate(req)
			if tt.valid && len(errs) > 0 {
				t.Errorf("expected %q to be valid, got %v", tt.username, errs)
			}
			if !tt.valid && len(errs) == 0 {
				t.Errorf("expected %q to be rejected", tt.username)
			}
		})
	}
}
