package services

import (
	"testing"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

func TestAnswerMatches(t *testing.T) {
	tests := []struct {
		name     string
		given    string
		expected string
		want     bool
	}{
		{"exact match", "Paris", "Paris", true},
		{"case insensitive", "paris", "PARIS", true},
		{"surrounding whitespace", "  Paris  ", "Paris", true},
		{"expected has whitespace", "Paris", " Paris ", true},
		{"wrong answer", "London", "Paris", false},
		{"empty never matches", "", "Paris", false},
		{"whitespace-only never matches", "   ", "Paris", false},
		{"empty against empty", "", "", false},
		{"unicode case folding", "straße", "STRASSE", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := answerMatches(tt.given, tt.expected); got != tt.want {
				t.Errorf("answerMatches(%q, %q) = %v, want %v", tt.given, tt.expected, got, tt.want)
			}
		})
	}
}

func TestGradeSubmission(t *testing.T) {
	questions := []*models.Question{
		{ID: 1, Type: models.MultipleChoice, CorrectAnswer: "42"},
		{ID: 2, Type: models.FreeForm, CorrectAnswer: "Pythagoras"},
	}

	tests := []struct {
		name        string
		answers     map[string]string
		points      int
		wantScore   int
		wantCorrect int
	}{
		{"all correct", map[string]string{"1": "42", "2": "pythagoras"}, 10, 20, 2},
		{"one correct", map[string]string{"1": "42", "2": "Euclid"}, 10, 10, 1},
		{"none correct", map[string]string{"1": "41", "2": "Euclid"}, 10, 0, 0},
		{"unanswered questions score zero", map[string]string{"1": "42"}, 10, 10, 1},
		{"empty answers", map[string]string{}, 10, 0, 0},
		{"unknown question ids are ignored", map[string]string{"99": "42"}, 10, 0, 0},
		{"case and whitespace tolerant", map[string]string{"1": " 42 ", "2": "PYTHAGORAS"}, 5, 10, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, correct := GradeSubmission(questions, tt.answers, tt.points)
			if score != tt.wantScore || correct != tt.wantCorrect {
				t.Errorf("GradeSubmission() = (%d, %d), want (%d, %d)",
					score, correct, tt.wantScore, tt.wantCorrect)
			}
		})
	}

	t.Run("deterministic over repeated runs", func(t *testing.T) {
		answers := map[string]string{"1": "42", "2": "wrong"}
		first, _ := GradeSubmission(questions, answers, 10)
		for i := 0; i < 5; i++ {
			score, _ := GradeSubmission(questions, answers, 10)
			if score != first {
				t.Fatalf("run %d: score %d differs from first run %d", i, score, first)
			}
		}
	})
}
