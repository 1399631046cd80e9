package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/services"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	studentService services.StudentService
	studentAuth    *StudentAuthMiddleware
}

func NewAuthHandler(studentService services.StudentService, studentAuth *StudentAuthMiddleware, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    NewBaseHandler(logger),
		studentService: studentService,
		studentAuth:    studentAuth,
	}
}

// LoginResponse is returned after a successful student login
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Student   *models.Student `json:"student"`
}

// Login authenticates a student and issues a session token
func (h *AuthHandler) Login(c *gin.Context) {
	var req validator.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	student, err := h.studentService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	token, expiresAt, err := h.studentAuth.IssueToken(student)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Student logged in", "student_id", student.ID)

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Student:   student,
	})
}

// Me returns the authenticated student's own account
func (h *AuthHandler) Me(c *gin.Context) {
	studentID, err := GetStudentIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}
