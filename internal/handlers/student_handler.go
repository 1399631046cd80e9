package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/services"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

type StudentHandler struct {
	BaseHandler
	studentService services.StudentService
	examService    services.ExamService
}

func NewStudentHandler(studentService services.StudentService, examService services.ExamService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler:    NewBaseHandler(logger),
		studentService: studentService,
		examService:    examService,
	}
}

// ===== STAFF ENDPOINTS =====

// CreateStudent registers a new student account
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req validator.StudentCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, student)
}

// GetStudent retrieves a student by ID
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// UpdateStudent updates a student account
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.StudentUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// DeleteStudent removes a student and all associated data
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting student", "student_id", id)

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Student deleted"})
}

// ListStudents lists students with optional filters
func (h *StudentHandler) ListStudents(c *gin.Context) {
	filters := repositories.StudentFilters{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}

	if group := c.Query("group"); group != "" {
		filters.Group = &group
	}
	if status := c.Query("status"); status != "" {
		s := models.StudentStatus(status)
		filters.Status = &s
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}

	students, total, err := h.studentService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: students, Total: total})
}

// ListGroups lists the distinct student groups
func (h *StudentHandler) ListGroups(c *gin.Context) {
	groups, err := h.studentService.ListGroups(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// ===== STUDENT ENDPOINTS =====

// GetMyExams lists the exams assigned to the authenticated student's group
// with their per-student status.
func (h *StudentHandler) GetMyExams(c *gin.Context) {
	studentID, err := GetStudentIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}

	exams, err := h.examService.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exams)
}

// GetMyExam returns one assigned exam with questions but without the
// correct answers.
func (h *StudentHandler) GetMyExam(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	studentID, err := GetStudentIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}

	exam, err := h.examService.GetForStudent(c.Request.Context(), examID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}
