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

type AppealHandler struct {
	BaseHandler
	appealService services.AppealService
}

func NewAppealHandler(appealService services.AppealService, logger utils.Logger) *AppealHandler {
	return &AppealHandler{
		BaseHandler:   NewBaseHandler(logger),
		appealService: appealService,
	}
}

// ===== STUDENT ENDPOINTS =====

// CreateAppeal opens an appeal against one graded answer
func (h *AppealHandler) CreateAppeal(c *gin.Context) {
	studentID, err := GetStudentIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}

	var req validator.AppealCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	appeal, err := h.appealService.Create(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, appeal)
}

// ListMyAppeals lists the authenticated student's own appeals
func (h *AppealHandler) ListMyAppeals(c *gin.Context) {
	studentID, err := GetStudentIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}

	appeals, err := h.appealService.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appeals)
}

// ===== STAFF ENDPOINTS =====

// ListAppeals lists appeals with optional status and exam filters
func (h *AppealHandler) ListAppeals(c *gin.Context) {
	filters := repositories.AppealFilters{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}

	if status := c.Query("status"); status != "" {
		s := models.AppealStatus(status)
		filters.Status = &s
	}
	if examID := parseIntQuery(c, "exam_id", 0); examID > 0 {
		id := uint(examID)
		filters.ExamID = &id
	}
	if studentID := parseIntQuery(c, "student_id", 0); studentID > 0 {
		id := uint(studentID)
		filters.StudentID = &id
	}

	appeals, total, err := h.appealService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: appeals, Total: total})
}

// GetAppeal retrieves one appeal by ID
func (h *AppealHandler) GetAppeal(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	appeal, err := h.appealService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appeal)
}

// ResolveAppeal approves or rejects a pending appeal
func (h *AppealHandler) ResolveAppeal(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resolverID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.AppealResolveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Resolving appeal", "appeal_id", id, "approve", req.Approve)

	appeal, err := h.appealService.Resolve(c.Request.Context(), id, resolverID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appeal)
}
