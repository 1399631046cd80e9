package services

import (
	"time"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

// DeriveStatus computes the exam status for one student at a given moment.
// A submission always wins over the clock for the student's own state, but
// results stay locked until the window closes: submitted before the end
// instant, completed after it. Statuses are checked in priority order so
// exactly one applies.
func DeriveStatus(startTime, endTime, now time.Time, submission *models.Submission) models.ExamStatus {
	if submission != nil {
		if now.After(endTime) {
			return models.ExamStatusCompleted
		}
		return models.ExamStatusSubmitted
	}

	if now.Before(startTime) {
		return models.ExamStatusNotStarted
	}

	if now.After(endTime) {
		return models.ExamStatusMissed
	}

	return models.ExamStatusInProgress
}
