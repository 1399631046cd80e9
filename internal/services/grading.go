package services

import (
	"strings"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

// answerMatches compares a student's answer against the expected one.
// Comparison ignores surrounding whitespace and letter case; an empty
// answer never matches.
func answerMatches(given, expected string) bool {
	given = strings.TrimSpace(given)
	if given == "" {
		return false
	}
	return strings.EqualFold(given, strings.TrimSpace(expected))
}

// GradeSubmission scores a set of answers against the exam's questions.
// Every correct answer is worth pointsPerQuestion; unanswered questions
// score zero. Grading is deterministic, so re-running it over the same
// inputs always yields the same score.
func GradeSubmission(questions []*models.Question, answers map[string]string, pointsPerQuestion int) (score, correct int) {
	for _, q := range questions {
		given, ok := answers[q.AnswerKey()]
		if !ok {
			continue
		}
		if answerMatches(given, q.CorrectAnswer) {
			correct++
		}
	}
	return correct * pointsPerQuestion, correct
}
