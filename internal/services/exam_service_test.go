package services

import (
	"context"
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

func newExamFixture(t *testing.T) (*fakeRepo, *events.MockEventPublisher, ExamService) {
	t.Helper()

	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	svc := NewExamService(repo, validator.NewBusinessValidator(), publisher, testLogger())
	return repo, publisher, svc
}

func validCreateRequest(now time.Time) *validator.ExamCreateRequest {
	return &validator.ExamCreateRequest{
		Title:             "Geometry Final",
		AssignedGroups:    []string{"9A", "9B"},
		StartTime:         now.Add(time.Hour),
		EndTime:           now.Add(3 * time.Hour),
		PointsPerQuestion: 5,
		Questions: []validator.QuestionCreateRequest{
			{
				Type:          models.MultipleChoice,
				Text:          "Sum of triangle angles?",
				Options:       []string{"90", "120", "180", "270", "360"},
				CorrectAnswer: "180",
			},
			{
				Type:          models.FreeForm,
				Text:          "Define a right angle",
				CorrectAnswer: "90 degrees",
			},
		},
	}
}

func TestExamService_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("creates exam with questions", func(t *testing.T) {
		repo, publisher, svc := newExamFixture(t)

		exam, err := svc.Create(ctx, "teacher-1", validCreateRequest(now))
		require.NoError(t, err)

		assert.Equal(t, "teacher-1", exam.CreatedBy)
		assert.Equal(t, 2, exam.QuestionCount)
		assert.ElementsMatch(t, []string{"9A", "9B"}, exam.GroupList())

		questions, err := repo.Exam().GetQuestions(ctx, exam.ID)
		require.NoError(t, err)
		require.Len(t, questions, 2)
		assert.Equal(t, []string{"90", "120", "180", "270", "360"}, questions[0].OptionList())
		assert.Empty(t, questions[1].OptionList())

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventExamCreated, published[0].Type)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		_, _, svc := newExamFixture(t)

		req := validCreateRequest(now)
		req.EndTime = req.StartTime.Add(-time.Minute)

		_, err := svc.Create(ctx, "teacher-1", req)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("rejects multiple choice with wrong option count", func(t *testing.T) {
		_, _, svc := newExamFixture(t)

		req := validCreateRequest(now)
		req.Questions[0].Options = []string{"90", "180"}

		_, err := svc.Create(ctx, "teacher-1", req)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestExamService_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	repo, _, svc := newExamFixture(t)
	exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))

	announcement := "Bring your own calculator"
	updated, err := svc.Update(ctx, exam.ID, &validator.ExamUpdateRequest{
		Announcement:   &announcement,
		AssignedGroups: []string{"9A", "10C"},
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Announcement)
	assert.Equal(t, announcement, *updated.Announcement)
	assert.True(t, updated.IsAssignedTo("10C"))

	t.Run("unknown exam", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, &validator.ExamUpdateRequest{Announcement: &announcement})
		assert.ErrorIs(t, err, ErrExamNotFound)
	})
}

func TestExamService_Delete(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	repo, publisher, svc := newExamFixture(t)
	exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
	student := seedStudent(t, repo, "9A", models.StudentActive)

	submissions := NewSubmissionService(repo, publisher, testLogger())
	_, err := submissions.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{
		Answers: map[string]string{},
	})
	require.NoError(t, err)
	publisher.ClearEvents()

	require.NoError(t, svc.Delete(ctx, exam.ID))

	_, err = svc.GetByID(ctx, exam.ID)
	assert.ErrorIs(t, err, ErrExamNotFound)

	// Submissions are gone with the exam.
	_, err = repo.Submission().GetByExamAndStudent(ctx, exam.ID, student.ID)
	assert.Error(t, err)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventExamDeleted, published[0].Type)
}

func TestExamService_GetForStudent(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("strips correct answers", func(t *testing.T) {
		repo, _, svc := newExamFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		view, err := svc.GetForStudent(ctx, exam.ID, student.ID)
		require.NoError(t, err)

		assert.Equal(t, models.ExamStatusInProgress, view.Status)
		require.Len(t, view.Questions, 2)
		for _, q := range view.Questions {
			assert.NotEmpty(t, q.Text)
		}
	})

	t.Run("unassigned group is rejected", func(t *testing.T) {
		repo, _, svc := newExamFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "11D", models.StudentActive)

		_, err := svc.GetForStudent(ctx, exam.ID, student.ID)
		assert.ErrorIs(t, err, ErrExamNotAssigned)
	})

	t.Run("status reflects submission", func(t *testing.T) {
		repo, publisher, svc := newExamFixture(t)
		exam := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
		student := seedStudent(t, repo, "9A", models.StudentActive)

		submissions := NewSubmissionService(repo, publisher, testLogger())
		_, err := submissions.Submit(ctx, exam.ID, student.ID, &validator.SubmitRequest{
			Answers: map[string]string{},
		})
		require.NoError(t, err)

		// The window is still open, so the submission shows as submitted
		// with results locked, not completed.
		view, err := svc.GetForStudent(ctx, exam.ID, student.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ExamStatusSubmitted, view.Status)
	})
}

func TestExamService_ListForStudent(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	repo, publisher, svc := newExamFixture(t)

	open := seedExam(t, repo, []string{"9A"}, now.Add(-time.Hour), now.Add(time.Hour))
	upcoming := seedExam(t, repo, []string{"9A"}, now.Add(time.Hour), now.Add(2*time.Hour))
	past := seedExam(t, repo, []string{"9A"}, now.Add(-3*time.Hour), now.Add(-2*time.Hour))
	finished := seedExam(t, repo, []string{"9A"}, now.Add(-3*time.Hour), now.Add(-time.Hour))
	seedExam(t, repo, []string{"10C"}, now.Add(-time.Hour), now.Add(time.Hour)) // other group

	student := seedStudent(t, repo, "9A", models.StudentActive)

	submissions := NewSubmissionService(repo, publisher, testLogger())
	questions, err := repo.Exam().GetQuestions(ctx, open.ID)
	require.NoError(t, err)
	_, err = submissions.Submit(ctx, open.ID, student.ID, &validator.SubmitRequest{
		Answers: map[string]string{questions[0].AnswerKey(): "4"},
	})
	require.NoError(t, err)

	// A graded submission on an exam whose window has already closed.
	_, _, err = repo.Submission().CreateIfAbsent(ctx, &models.Submission{
		ExamID:      finished.ID,
		StudentID:   student.ID,
		Score:       10,
		SubmittedAt: now.Add(-2 * time.Hour),
	})
	require.NoError(t, err)

	summaries, err := svc.ListForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 4, "exams of other groups are invisible")

	byID := make(map[uint]*StudentExamSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}

	// Submitted mid-window: results locked, no score on the dashboard yet.
	assert.Equal(t, models.ExamStatusSubmitted, byID[open.ID].Status)
	assert.Nil(t, byID[open.ID].Score)
	assert.Equal(t, 20, byID[open.ID].MaxScore)

	// Window closed: completed, score visible.
	assert.Equal(t, models.ExamStatusCompleted, byID[finished.ID].Status)
	require.NotNil(t, byID[finished.ID].Score)
	assert.Equal(t, 10, *byID[finished.ID].Score)

	assert.Equal(t, models.ExamStatusNotStarted, byID[upcoming.ID].Status)
	assert.Nil(t, byID[upcoming.ID].Score)

	assert.Equal(t, models.ExamStatusMissed, byID[past.ID].Status)
}
