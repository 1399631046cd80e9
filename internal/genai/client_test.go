package genai

import (
	"strings"
	"testing"
)

func TestBuildGenerationPrompt(t *testing.T) {
	prompt := buildGenerationPrompt(7)

	wantParts := []string{
		"Generate EXACTLY 7 questions",
		"multiple_choice",
		"free_form",
		"exactly 5 distinct options",
		`"correctAnswer"`,
	}
	for _, part := range wantParts {
		if !strings.Contains(prompt, part) {
			t.Errorf("prompt missing %q\nprompt: %s", part, prompt)
		}
	}
}

func TestParseGenerationResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantN   int
		wantErr string
	}{
		{
			name: "valid mixed questions",
			raw: `{"questions": [
				{"text": "2+2?", "type": "multiple_choice", "options": ["1","2","3","4","5"], "correctAnswer": "4"},
				{"text": "Define a prime number", "type": "free_form", "options": [], "correctAnswer": "divisible only by 1 and itself"}
			]}`,
			wantN: 2,
		},
		{
			name:    "malformed json",
			raw:     `{"questions": [`,
			wantErr: "parse generation response",
		},
		{
			name:    "empty question text",
			raw:     `{"questions": [{"text": "  ", "type": "free_form", "correctAnswer": "x"}]}`,
			wantErr: "empty text",
		},
		{
			name:    "empty correct answer",
			raw:     `{"questions": [{"text": "2+2?", "type": "free_form", "correctAnswer": ""}]}`,
			wantErr: "empty correct answer",
		},
		{
			name:    "multiple choice with wrong option count",
			raw:     `{"questions": [{"text": "2+2?", "type": "multiple_choice", "options": ["3","4"], "correctAnswer": "4"}]}`,
			wantErr: "must have 5 options",
		},
		{
			name:    "multiple choice with duplicate options",
			raw:     `{"questions": [{"text": "2+2?", "type": "multiple_choice", "options": ["4","4","5","6","7"], "correctAnswer": "4"}]}`,
			wantErr: "duplicate option",
		},
		{
			name:    "answer not among options",
			raw:     `{"questions": [{"text": "2+2?", "type": "multiple_choice", "options": ["1","2","3","5","6"], "correctAnswer": "4"}]}`,
			wantErr: "do not contain the correct answer",
		},
		{
			name:    "free form with options",
			raw:     `{"questions": [{"text": "Explain", "type": "free_form", "options": ["a"], "correctAnswer": "b"}]}`,
			wantErr: "must not have options",
		},
		{
			name:    "unknown question type",
			raw:     `{"questions": [{"text": "Essay time", "type": "essay", "correctAnswer": "n/a"}]}`,
			wantErr: "unknown type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := parseGenerationResponse(tt.raw)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(questions) != tt.wantN {
				t.Errorf("expected %d questions, got %d", tt.wantN, len(questions))
			}
		})
	}
}

func TestParseGenerationResponse_ErrorMentionsIndex(t *testing.T) {
	raw := `{"questions": [
		{"text": "fine", "type": "free_form", "correctAnswer": "ok"},
		{"text": "", "type": "free_form", "correctAnswer": "ok"}
	]}`

	_, err := parseGenerationResponse(raw)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "question 2") {
		t.Errorf("expected error to name question 2, got %q", err.Error())
	}
}
