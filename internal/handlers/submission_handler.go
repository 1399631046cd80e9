package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/services"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

// ===== STUDENT ENDPOINTS =====

// SubmitExam grades and stores the student's answers
func (h *SubmissionHandler) SubmitExam(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	studentID, err := GetStudentIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}

	var req validator.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Exam submitted", "exam_id", examID, "student_id", studentID)

	submission, err := h.submissionService.Submit(c.Request.Context(), examID, studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ReportProctoringEvent records a proctoring violation and force-submits
// the exam with a cheating flag.
func (h *SubmissionHandler) ReportProctoringEvent(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	studentID, err := GetStudentIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}

	var req validator.ProctoringEventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	submitReq := &validator.SubmitRequest{Answers: req.Answers}

	submission, err := h.submissionService.ForceSubmit(
		c.Request.Context(), examID, studentID, submitReq, req.Type,
		c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// GetMyResult returns the student's own graded result with the per-question
// breakdown. Locked until the exam window closes, then available once the
// exam has been submitted.
func (h *SubmissionHandler) GetMyResult(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	studentID, err := GetStudentIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}

	result, err := h.submissionService.GetResultForStudent(c.Request.Context(), examID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ===== STAFF ENDPOINTS =====

// ListSubmissions lists submissions for one exam
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	filters := repositories.SubmissionFilters{
		CheatingOnly: c.Query("cheating") == "true",
		Limit:        parseIntQuery(c, "limit", 50),
		Offset:       parseIntQuery(c, "offset", 0),
	}

	submissions, total, err := h.submissionService.ListByExam(c.Request.Context(), examID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: submissions, Total: total})
}

// GetStudentResult returns one student's graded result for staff review
func (h *SubmissionHandler) GetStudentResult(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	studentID := h.parseIDParam(c, "student_id")
	if studentID == 0 {
		return
	}

	result, err := h.submissionService.GetResult(c.Request.Context(), examID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListProctoringEvents lists the proctoring violations recorded for an exam
func (h *SubmissionHandler) ListProctoringEvents(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	events, err := h.submissionService.ListProctoringEvents(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}
