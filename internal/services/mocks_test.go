package services

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
)

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
}

// fakeRepo is an in-memory repositories.Repository. It mirrors the database
// behavior the services rely on: record-not-found errors, the unique
// submission constraint, and cascade deletes.
type fakeRepo struct {
	exams       map[uint]*models.Exam
	questions   map[uint][]*models.Question
	submissions map[uint]*models.Submission
	proctoring  []*models.ProctoringEvent
	appeals     map[uint]*models.Appeal
	students    map[uint]*models.Student

	nextExamID       uint
	nextQuestionID   uint
	nextSubmissionID uint
	nextAppealID     uint
	nextStudentID    uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		exams:       make(map[uint]*models.Exam),
		questions:   make(map[uint][]*models.Question),
		submissions: make(map[uint]*models.Submission),
		appeals:     make(map[uint]*models.Appeal),
		students:    make(map[uint]*models.Student),
	}
}

func (r *fakeRepo) Exam() repositories.ExamRepository             { return (*fakeExamRepo)(r) }
func (r *fakeRepo) Submission() repositories.SubmissionRepository { return (*fakeSubmissionRepo)(r) }
func (r *fakeRepo) Proctoring() repositories.ProctoringRepository { return (*fakeProctoringRepo)(r) }
func (r *fakeRepo) Appeal() repositories.AppealRepository         { return (*fakeAppealRepo)(r) }
func (r *fakeRepo) Student() repositories.StudentRepository       { return (*fakeStudentRepo)(r) }
func (r *fakeRepo) User() repositories.UserRepository             { return nil }

func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

// ===== EXAMS =====

type fakeExamRepo fakeRepo

func (r *fakeExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	r.nextExamID++
	exam.ID = r.nextExamID
	r.exams[exam.ID] = exam
	return nil
}

func (r *fakeExamRepo) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	exam, ok := r.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (r *fakeExamRepo) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error) {
	exam, ok := r.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	withQuestions := *exam
	withQuestions.Questions = nil
	for _, q := range r.questions[id] {
		withQuestions.Questions = append(withQuestions.Questions, *q)
	}
	sort.Slice(withQuestions.Questions, func(i, j int) bool {
		return withQuestions.Questions[i].Position < withQuestions.Questions[j].Position
	})
	withQuestions.QuestionCount = len(withQuestions.Questions)
	return &withQuestions, nil
}

func (r *fakeExamRepo) Update(ctx context.Context, exam *models.Exam) error {
	if _, ok := r.exams[exam.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.exams[exam.ID] = exam
	return nil
}

func (r *fakeExamRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.exams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.exams, id)
	return nil
}

func (r *fakeExamRepo) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var out []*models.Exam
	for _, exam := range r.exams {
		if filters.Group != nil && !exam.IsAssignedTo(*filters.Group) {
			continue
		}
		if filters.CreatedBy != nil && exam.CreatedBy != *filters.CreatedBy {
			continue
		}
		out = append(out, exam)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeExamRepo) GetByGroup(ctx context.Context, group string) ([]*models.Exam, error) {
	var out []*models.Exam
	for _, exam := range r.exams {
		if exam.IsAssignedTo(group) {
			out = append(out, exam)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeExamRepo) CreateQuestions(ctx context.Context, questions []*models.Question) error {
	for _, q := range questions {
		r.nextQuestionID++
		q.ID = r.nextQuestionID
		r.questions[q.ExamID] = append(r.questions[q.ExamID], q)
	}
	return nil
}

func (r *fakeExamRepo) GetQuestions(ctx context.Context, examID uint) ([]*models.Question, error) {
	questions := append([]*models.Question(nil), r.questions[examID]...)
	sort.Slice(questions, func(i, j int) bool { return questions[i].Position < questions[j].Position })
	return questions, nil
}

func (r *fakeExamRepo) ReplaceQuestions(ctx context.Context, examID uint, questions []*models.Question) error {
	delete(r.questions, examID)
	return r.CreateQuestions(ctx, questions)
}

func (r *fakeExamRepo) DeleteQuestions(ctx context.Context, examID uint) error {
	delete(r.questions, examID)
	return nil
}

func (r *fakeExamRepo) GetStats(ctx context.Context, examID uint) (*repositories.ExamStats, error) {
	stats := &repositories.ExamStats{}
	var total int
	for _, sub := range r.submissions {
		if sub.ExamID != examID {
			continue
		}
		stats.SubmissionCount++
		if sub.CheatingDetected {
			stats.CheatingCount++
		}
		if sub.Score != models.ScoreUngraded {
			total += sub.Score
			if sub.Score > stats.MaxScore {
				stats.MaxScore = sub.Score
			}
		}
	}
	if stats.SubmissionCount > 0 {
		stats.AverageScore = float64(total) / float64(stats.SubmissionCount)
	}
	for _, appeal := range r.appeals {
		if appeal.ExamID == examID && appeal.Status == models.AppealPending {
			stats.PendingAppeals++
		}
	}
	return stats, nil
}

func (r *fakeExamRepo) CountQuestions(ctx context.Context, examID uint) (int64, error) {
	return int64(len(r.questions[examID])), nil
}

// ===== SUBMISSIONS =====

type fakeSubmissionRepo fakeRepo

func (r *fakeSubmissionRepo) CreateIfAbsent(ctx context.Context, submission *models.Submission) (*models.Submission, bool, error) {
	for _, existing := range r.submissions {
		if existing.ExamID == submission.ExamID && existing.StudentID == submission.StudentID {
			return existing, false, nil
		}
	}
	r.nextSubmissionID++
	submission.ID = r.nextSubmissionID
	r.submissions[submission.ID] = submission
	return submission, true, nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	sub, ok := r.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (r *fakeSubmissionRepo) GetByExamAndStudent(ctx context.Context, examID, studentID uint) (*models.Submission, error) {
	for _, sub := range r.submissions {
		if sub.ExamID == examID && sub.StudentID == studentID {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	if _, ok := r.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.submissions[submission.ID] = submission
	return nil
}

func (r *fakeSubmissionRepo) UpdateScore(ctx context.Context, id uint, score int) error {
	sub, ok := r.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sub.Score = score
	return nil
}

func (r *fakeSubmissionRepo) GetByExam(ctx context.Context, examID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var out []*models.Submission
	for _, sub := range r.submissions {
		if sub.ExamID != examID {
			continue
		}
		if filters.CheatingOnly && !sub.CheatingDetected {
			continue
		}
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeSubmissionRepo) GetByStudent(ctx context.Context, studentID uint) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, sub := range r.submissions {
		if sub.StudentID == studentID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSubmissionRepo) ExistsByExamAndStudent(ctx context.Context, examID, studentID uint) (bool, error) {
	_, err := r.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeSubmissionRepo) DeleteByExam(ctx context.Context, examID uint) error {
	for id, sub := range r.submissions {
		if sub.ExamID == examID {
			delete(r.submissions, id)
		}
	}
	return nil
}

func (r *fakeSubmissionRepo) DeleteByStudent(ctx context.Context, studentID uint) error {
	for id, sub := range r.submissions {
		if sub.StudentID == studentID {
			delete(r.submissions, id)
		}
	}
	return nil
}

// ===== PROCTORING =====

type fakeProctoringRepo fakeRepo

func (r *fakeProctoringRepo) Create(ctx context.Context, event *models.ProctoringEvent) error {
	event.ID = uint(len(r.proctoring) + 1)
	r.proctoring = append(r.proctoring, event)
	return nil
}

func (r *fakeProctoringRepo) GetByExam(ctx context.Context, examID uint) ([]*models.ProctoringEvent, error) {
	var out []*models.ProctoringEvent
	for _, e := range r.proctoring {
		if e.ExamID == examID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeProctoringRepo) GetByExamAndStudent(ctx context.Context, examID, studentID uint) ([]*models.ProctoringEvent, error) {
	var out []*models.ProctoringEvent
	for _, e := range r.proctoring {
		if e.ExamID == examID && e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeProctoringRepo) DeleteByExam(ctx context.Context, examID uint) error {
	kept := r.proctoring[:0]
	for _, e := range r.proctoring {
		if e.ExamID != examID {
			kept = append(kept, e)
		}
	}
	r.proctoring = kept
	return nil
}

func (r *fakeProctoringRepo) DeleteByStudent(ctx context.Context, studentID uint) error {
	kept := r.proctoring[:0]
	for _, e := range r.proctoring {
		if e.StudentID != studentID {
			kept = append(kept, e)
		}
	}
	r.proctoring = kept
	return nil
}

// ===== APPEALS =====

type fakeAppealRepo fakeRepo

func (r *fakeAppealRepo) Create(ctx context.Context, appeal *models.Appeal) error {
	r.nextAppealID++
	appeal.ID = r.nextAppealID
	r.appeals[appeal.ID] = appeal
	return nil
}

func (r *fakeAppealRepo) GetByID(ctx context.Context, id uint) (*models.Appeal, error) {
	appeal, ok := r.appeals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return appeal, nil
}

func (r *fakeAppealRepo) Update(ctx context.Context, appeal *models.Appeal) error {
	if _, ok := r.appeals[appeal.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.appeals[appeal.ID] = appeal
	return nil
}

func (r *fakeAppealRepo) List(ctx context.Context, filters repositories.AppealFilters) ([]*models.Appeal, int64, error) {
	var out []*models.Appeal
	for _, appeal := range r.appeals {
		if filters.Status != nil && appeal.Status != *filters.Status {
			continue
		}
		if filters.ExamID != nil && appeal.ExamID != *filters.ExamID {
			continue
		}
		if filters.StudentID != nil && appeal.StudentID != *filters.StudentID {
			continue
		}
		out = append(out, appeal)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeAppealRepo) GetByStudent(ctx context.Context, studentID uint) ([]*models.Appeal, error) {
	var out []*models.Appeal
	for _, appeal := range r.appeals {
		if appeal.StudentID == studentID {
			out = append(out, appeal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAppealRepo) ExistsPending(ctx context.Context, examID, studentID, questionID uint) (bool, error) {
	for _, appeal := range r.appeals {
		if appeal.ExamID == examID && appeal.StudentID == studentID &&
			appeal.QuestionID == questionID && appeal.Status == models.AppealPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppealRepo) CountPending(ctx context.Context) (int64, error) {
	var n int64
	for _, appeal := range r.appeals {
		if appeal.Status == models.AppealPending {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppealRepo) DeleteByExam(ctx context.Context, examID uint) error {
	for id, appeal := range r.appeals {
		if appeal.ExamID == examID {
			delete(r.appeals, id)
		}
	}
	return nil
}

func (r *fakeAppealRepo) DeleteByStudent(ctx context.Context, studentID uint) error {
	for id, appeal := range r.appeals {
		if appeal.StudentID == studentID {
			delete(r.appeals, id)
		}
	}
	return nil
}

// ===== STUDENTS =====

type fakeStudentRepo fakeRepo

func (r *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	r.nextStudentID++
	student.ID = r.nextStudentID
	r.students[student.ID] = student
	return nil
}

func (r *fakeStudentRepo) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (r *fakeStudentRepo) GetByUsername(ctx context.Context, username string) (*models.Student, error) {
	for _, student := range r.students {
		if student.Username == username {
			return student, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := r.students[student.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.students[student.ID] = student
	return nil
}

func (r *fakeStudentRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.students, id)
	return nil
}

func (r *fakeStudentRepo) List(ctx context.Context, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	var out []*models.Student
	for _, student := range r.students {
		if filters.Group != nil && student.Group != *filters.Group {
			continue
		}
		if filters.Status != nil && student.Status != *filters.Status {
			continue
		}
		if filters.Search != nil {
			needle := strings.ToLower(*filters.Search)
			if !strings.Contains(strings.ToLower(student.Name), needle) &&
				!strings.Contains(strings.ToLower(student.Username), needle) {
				continue
			}
		}
		out = append(out, student)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeStudentRepo) GetByGroup(ctx context.Context, group string) ([]*models.Student, error) {
	var out []*models.Student
	for _, student := range r.students {
		if student.Group == group {
			out = append(out, student)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeStudentRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeStudentRepo) ListGroups(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, student := range r.students {
		if !seen[student.Group] {
			seen[student.Group] = true
			out = append(out, student.Group)
		}
	}
	sort.Strings(out)
	return out, nil
}
