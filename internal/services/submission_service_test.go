package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-2025/www.riyaziyyat.az/internal/events"
	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

func seedExam(t *testing.T, repo *fakeRepo, groups []string, start, end time.Time) *models.Exam {
	t.Helper()

	groupsJSON, err := json.Marshal(groups)
	require.NoError(t, err)

	exam := &models.Exam{
		Title:             "Algebra Midterm",
		AssignedGroups:    groupsJSON,
		StartTime:         start,
		EndTime:           end,
		PointsPerQuestion: 10,
		CreatedBy:         "teacher-1",
	}
	require.NoError(t, repo.Exam().Create(context.Background(), exam))

	questions := []*models.Question{
		{ExamID: exam.ID, Position: 1, Type: models.MultipleChoice, Text: "2+2?", CorrectAnswer: "4"},
		{ExamID: exam.ID, Position: 2, Type: models.FreeForm, Text: "Name the theorem", CorrectAnswer: "Pythagoras"},
	}
	require.NoError(t, repo.Exam().CreateQuestions(context.Background(), questions))

	return exam
}

func seedStudent(t *testing.T, repo *fakeRepo, group string, status models.StudentStatus) *models.Student {
	t.Helper()

	student := &models.Student{
		Name:     "Aysel Aliyeva",
		Group:    group,
		Class:    "9A",
		Username: "aysel.a",
		Status:   status,
	}
	require.NoError(t, repo.Student().Create(context.Background(), student))
	return student
}

func newSubmissionFixture(t *testing.T) (*fakeRepo, *events.MockEventPublisher, SubmissionService) {
	t.Helper()

	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	svc := NewSubmissionService(repo, publisher, testLogger())
	return repo, publisher, svc
}

func TestSubmissionService_Submit(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("grades and stores within window", func(t *testing.T) {
		repo, publisher, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		questions, err := repo.Exam().GetQuestions(ctx, exam.ID)
		require.NoError(t, err)

		sub, err := svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{
			Answers: map[string]string{
				questions[0].AnswerKey(): "4",
				questions[1].AnswerKey(): "pythagoras",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 20, sub.Score)
		assert.False(t, sub.CheatingDetected)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventSubmissionReceived, published[0].Type)
	})

	t.Run("second submit loses to the stored row", func(t *testing.T) {
		repo, _, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		questions, err := repo.Exam().GetQuestions(ctx, exam.ID)
		require.NoError(t, err)

		first, err := svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{
			Answers: map[string]string{questions[0].AnswerKey(): "4"},
		})
		require.NoError(t, err)

		second, err := svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{
			Answers: map[string]string{
				questions[0].AnswerKey(): "4",
				questions[1].AnswerKey(): "Pythagoras",
			},
		})
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Score, second.Score, "stored score must not change")
	})

	t.Run("rejects before the window opens", func(t *testing.T) {
		repo, _, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(time.Hour), now.Add(2*time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		_, err := svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{Answers: map[string]string{}})
		assert.ErrorIs(t, err, ErrExamNotOpen)
	})

	t.Run("rejects after the window closes", func(t *testing.T) {
		repo, _, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-2*time.Hour), now.Add(-time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		_, err := svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{Answers: map[string]string{}})
		assert.ErrorIs(t, err, ErrExamNotOpen)
	})

	t.Run("rejects student from another group", func(t *testing.T) {
		repo, _, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9B", models.StudentActive)

		_, err := svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{Answers: map[string]string{}})
		assert.ErrorIs(t, err, ErrExamNotAssigned)
	})

	t.Run("rejects disabled student", func(t *testing.T) {
		repo, _, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentDisabled)

		_, err := svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{Answers: map[string]string{}})
		assert.ErrorIs(t, err, ErrStudentDisabled)
	})
}

func TestSubmissionService_ForceSubmit(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("stores ungraded cheating submission and records event", func(t *testing.T) {
		repo, publisher, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		sub, err := svc.ForceSubmit(ctx, exam.ID, student.ID,
			&validator.SubmitRequest{Answers: map[string]string{"1": "4"}},
			models.EventVisibilityHidden, "test-agent", "10.0.0.1")
		require.NoError(t, err)

		assert.True(t, sub.CheatingDetected)
		assert.Equal(t, models.ScoreUngraded, sub.Score)

		recorded, err := repo.Proctoring().GetByExamAndStudent(ctx, exam.ID, student.ID)
		require.NoError(t, err)
		require.Len(t, recorded, 1)
		assert.Equal(t, models.EventVisibilityHidden, recorded[0].Type)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventCheatingDetected, published[0].Type)
	})

	t.Run("second violation keeps the first submission", func(t *testing.T) {
		repo, publisher, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		first, err := svc.ForceSubmit(ctx, exam.ID, student.ID, nil,
			models.EventFullscreenExit, "test-agent", "10.0.0.1")
		require.NoError(t, err)

		second, err := svc.ForceSubmit(ctx, exam.ID, student.ID, nil,
			models.EventVisibilityHidden, "test-agent", "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		// Both violations stay in the audit trail, but only the first
		// publishes a cheating event.
		recorded, err := repo.Proctoring().GetByExamAndStudent(ctx, exam.ID, student.ID)
		require.NoError(t, err)
		assert.Len(t, recorded, 2)
		assert.Len(t, publisher.GetPublishedEvents(), 1)
	})

	t.Run("does not overwrite a regular submission", func(t *testing.T) {
		repo, _, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		questions, err := repo.Exam().GetQuestions(ctx, exam.ID)
		require.NoError(t, err)

		graded, err := svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{
			Answers: map[string]string{questions[0].AnswerKey(): "4"},
		})
		require.NoError(t, err)

		forced, err := svc.ForceSubmit(ctx, exam.ID, student.ID, nil,
			models.EventVisibilityHidden, "test-agent", "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, graded.ID, forced.ID)
		assert.False(t, forced.CheatingDetected)
		assert.Equal(t, 10, forced.Score)
	})

	t.Run("rejects unknown event type", func(t *testing.T) {
		repo, _, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		_, err := svc.ForceSubmit(ctx, exam.ID, student.ID, nil,
			models.ProctoringEventType("tab_switch"), "test-agent", "10.0.0.1")
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestSubmissionService_GetResult(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	repo, _, svc := newSubmissionFixture(t)
	exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
	student := seedStudent(t, repo, "9A", models.StudentActive)

	questions, err := repo.Exam().GetQuestions(ctx, exam.ID)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{
		Answers: map[string]string{
			questions[0].AnswerKey(): "5",
			questions[1].AnswerKey(): " PYTHAGORAS ",
		},
	})
	require.NoError(t, err)

	result, err := svc.GetResult(ctx, exam.ID, student.ID)
	require.NoError(t, err)

	assert.Equal(t, exam.ID, result.ExamID)
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, 20, result.MaxScore)
	require.Len(t, result.Answers, 2)
	assert.False(t, result.Answers[0].Correct)
	assert.True(t, result.Answers[1].Correct)
	assert.Equal(t, "4", result.Answers[0].CorrectAnswer)

	t.Run("no submission yet", func(t *testing.T) {
		other := seedStudent(t, repo, "9A", models.StudentActive)
		_, err := svc.GetResult(ctx, exam.ID, other.ID)
		assert.ErrorIs(t, err, ErrNotSubmitted)
	})
}

func TestSubmissionService_GetResultForStudent(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("locked while the window is open", func(t *testing.T) {
		repo, _, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		questions, err := repo.Exam().GetQuestions(ctx, exam.ID)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{
			Answers: map[string]string{questions[0].AnswerKey(): "4"},
		})
		require.NoError(t, err)

		// Classmates are still taking the exam; no breakdown with correct
		// answers may leave the server yet.
		_, err = svc.GetResultForStudent(ctx, exam.ID, student.ID)
		assert.ErrorIs(t, err, ErrResultsLocked)
	})

	t.Run("unlocks once the window closes", func(t *testing.T) {
		repo, _, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-3*time.Hour), now.Add(-time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		questions, err := repo.Exam().GetQuestions(ctx, exam.ID)
		require.NoError(t, err)

		_, _, err = repo.Submission().CreateIfAbsent(ctx, &models.Submission{
			ExamID:      exam.ID,
			StudentID:   student.ID,
			Answers:     models.NewAnswerMap(map[string]string{questions[0].AnswerKey(): "4"}),
			SubmittedAt: now.Add(-2 * time.Hour),
			Score:       10,
		})
		require.NoError(t, err)

		result, err := svc.GetResultForStudent(ctx, exam.ID, student.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, result.Score)
		require.Len(t, result.Answers, 2)
		assert.True(t, result.Answers[0].Correct)
		assert.Equal(t, "4", result.Answers[0].CorrectAnswer)
	})

	t.Run("staff view is not gated", func(t *testing.T) {
		repo, _, svc := newSubmissionFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		_, err := svc.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{
			Answers: map[string]string{},
		})
		require.NoError(t, err)

		result, err := svc.GetResult(ctx, exam.ID, student.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Score)
	})
}
