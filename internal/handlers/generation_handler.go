package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/math-2025/www.riyaziyyat.az/internal/services"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
	"github.com/math-2025/www.riyaziyyat.az/internal/validator"
)

// Uploaded PDFs above this size are rejected before hitting the model.
const maxPDFSize = 20 << 20 // 20 MiB

type GenerationHandler struct {
	BaseHandler
	generationService services.GenerationService
}

func NewGenerationHandler(generationService services.GenerationService, logger utils.Logger) *GenerationHandler {
	return &GenerationHandler{
		BaseHandler:       NewBaseHandler(logger),
		generationService: generationService,
	}
}

// GenerateQuestions accepts a multipart PDF upload and returns AI-drafted
// questions for teacher review. Nothing is persisted; the teacher edits the
// drafts and saves them through the normal exam creation flow.
func (h *GenerationHandler) GenerateQuestions(c *gin.Context) {
	var req validator.GenerateQuestionsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if req.NumQuestions < 1 || req.NumQuestions > 50 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "num_questions must be between 1 and 50",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing PDF file",
			Details: "upload the document as multipart field 'file'",
		})
		return
	}
	if fileHeader.Size > maxPDFSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "PDF file too large",
		})
		return
	}
	if !strings.EqualFold(fileHeader.Header.Get("Content-Type"), "application/pdf") &&
		!strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Only PDF documents are supported",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer file.Close()

	pdfData, err := io.ReadAll(file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Generating questions from PDF",
		"filename", fileHeader.Filename,
		"size", fileHeader.Size,
		"num_questions", req.NumQuestions)

	drafts, err := h.generationService.GenerateFromPDF(c.Request.Context(), pdfData, req.NumQuestions)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Questions generated",
		Data:    drafts,
	})
}
