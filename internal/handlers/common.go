package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/math-2025/www.riyaziyyat.az/internal/services"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationErrorResponse represents validation error details
type ValidationErrorResponse struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ListResponse wraps paginated list results
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetString("request_id"),
	}
	fields = append(fields, additionalFields...)

	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetString("request_id"),
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// ===== HELPER METHODS =====

// parseIDParam parses a numeric path parameter. On failure it writes a 400
// response and returns 0; callers must treat 0 as "response already sent".
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID must be a valid number",
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func parseIntQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// ===== ERROR HANDLING =====

// handleServiceError maps service errors to HTTP status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationServiceError

	switch {
	case errors.As(err, &validationErr):
		details := make([]ValidationErrorResponse, 0, len(validationErr.Errors))
		for _, ve := range validationErr.Errors {
			details = append(details, ValidationErrorResponse{
				Field:   ve.Field,
				Message: ve.Message,
				Value:   ve.Value,
			})
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: details,
			Code:    "validation_failed",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
			Code:    "validation_failed",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid username or password",
			Code:    "invalid_credentials",
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Unauthorized",
		})
	case errors.Is(err, services.ErrStudentDisabled):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Account is disabled",
			Code:    "account_disabled",
		})
	case errors.Is(err, services.ErrExamNotOpen):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Exam is not open for submissions",
			Code:    "exam_not_open",
		})
	case errors.Is(err, services.ErrResultsLocked):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Results are locked until the exam ends",
			Code:    "results_locked",
		})
	case errors.Is(err, services.ErrAppealNotAllowed):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "This answer cannot be appealed",
			Code:    "appeal_not_allowed",
		})
	case services.IsForbidden(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrNotSubmitted):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No submission found for this exam",
			Code:    "not_submitted",
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
			Details: err.Error(),
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Conflict",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrGenerationDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Question generation is not configured",
			Code:    "generation_disabled",
		})
	case errors.Is(err, services.ErrInvalidPDF):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid or empty PDF document",
			Code:    "invalid_pdf",
		})
	case errors.Is(err, services.ErrGenerationFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Question generation failed",
			Details: err.Error(),
			Code:    "generation_failed",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
