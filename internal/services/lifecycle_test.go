package services

import (
	"testing"
	"time"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

func TestDeriveStatus(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	graded := &models.Submission{Score: 40}
	zeroScore := &models.Submission{Score: 0}
	flagged := &models.Submission{Score: models.ScoreUngraded, CheatingDetected: true}

	tests := []struct {
		name       string
		now        time.Time
		submission *models.Submission
		want       models.ExamStatus
	}{
		{"submission during window stays submitted", start.Add(time.Hour), graded, models.ExamStatusSubmitted},
		{"submission after window is completed", end.Add(time.Hour), graded, models.ExamStatusCompleted},
		{"zero score after window is completed", end.Add(time.Hour), zeroScore, models.ExamStatusCompleted},
		{"flagged submission during window", start.Add(time.Hour), flagged, models.ExamStatusSubmitted},
		{"flagged submission after window", end.Add(time.Hour), flagged, models.ExamStatusCompleted},
		{"no submission before window", start.Add(-time.Hour), nil, models.ExamStatusNotStarted},
		{"no submission after window", end.Add(time.Minute), nil, models.ExamStatusMissed},
		{"no submission during window", start.Add(time.Minute), nil, models.ExamStatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(start, end, tt.now, tt.submission)
			if got != tt.want {
				t.Errorf("DeriveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}
