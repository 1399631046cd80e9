package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
)

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportResults renders the results of one exam as an xlsx workbook: one
// row per assigned student, submitted or not.
func (s *exportService) ExportResults(ctx context.Context, examID uint) ([]byte, string, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrExamNotFound
		}
		return nil, "", err
	}

	submissions, _, err := s.repo.Submission().GetByExam(ctx, examID, repositories.SubmissionFilters{})
	if err != nil {
		return nil, "", err
	}

	byStudent := make(map[uint]*models.Submission, len(submissions))
	for _, sub := range submissions {
		byStudent[sub.StudentID] = sub
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []interface{}{"Student", "Group", "Class", "Status", "Score", "Max Score", "Percent", "Submitted At", "Flagged"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, "", fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	maxScore := exam.MaxScore()
	for _, group := range exam.GroupList() {
		students, err := s.repo.Student().GetByGroup(ctx, group)
		if err != nil {
			return nil, "", err
		}

		for _, student := range students {
			submission := byStudent[student.ID]
			status := DeriveStatus(exam.StartTime, exam.EndTime, time.Now(), submission)

			values := []interface{}{student.Name, student.Group, student.Class, string(status)}
			if submission != nil {
				score := interface{}("")
				percent := interface{}("")
				if submission.Score != models.ScoreUngraded {
					score = submission.Score
					if maxScore > 0 {
						percent = fmt.Sprintf("%.0f%%", float64(submission.Score)/float64(maxScore)*100)
					}
				}
				flagged := ""
				if submission.CheatingDetected {
					flagged = "yes"
				}
				values = append(values, score, maxScore, percent,
					submission.SubmittedAt.Format("2006-01-02 15:04"), flagged)
			} else {
				values = append(values, "", maxScore, "", "", "")
			}

			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, "", fmt.Errorf("failed to write row: %w", err)
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("exam-%d-results.xlsx", exam.ID)

	s.logger.Info("Results exported", "exam_id", examID, "rows", row-2)
	return buf.Bytes(), filename, nil
}
