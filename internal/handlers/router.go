package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/math-2025/www.riyaziyyat.az/internal/config"
	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
	"github.com/math-2025/www.riyaziyyat.az/internal/services"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	examHandler       *ExamHandler
	submissionHandler *SubmissionHandler
	appealHandler     *AppealHandler
	studentHandler    *StudentHandler
	generationHandler *GenerationHandler

	staffAuth      *CasdoorAuthMiddleware
	studentAuth    *StudentAuthMiddleware
	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	cfg *config.Config,
	userRepo repositories.UserRepository,
	logger utils.Logger,
) *HandlerManager {
	staffAuth := NewCasdoorAuthMiddleware(cfg.Casdoor, userRepo)
	studentAuth := NewStudentAuthMiddleware(cfg.JWTSecret, cfg.SessionTTL)

	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Student(), studentAuth, logger),
		examHandler:       NewExamHandler(serviceManager.Exam(), serviceManager.Export(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), logger),
		appealHandler:     NewAppealHandler(serviceManager.Appeal(), logger),
		studentHandler:    NewStudentHandler(serviceManager.Student(), serviceManager.Exam(), logger),
		generationHandler: NewGenerationHandler(serviceManager.Generation(), logger),
		staffAuth:         staffAuth,
		studentAuth:       studentAuth,
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "exam-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "exam-service",
		})
	})

	v1 := router.Group("/api/v1")

	// Student login is the only unauthenticated API endpoint
	v1.POST("/auth/login", hm.authHandler.Login)

	// Staff routes - teachers and admins, authenticated via Casdoor
	staff := v1.Group("")
	staff.Use(hm.staffAuth.AuthMiddleware())
	staff.Use(hm.staffAuth.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
	{
		exams := staff.Group("/exams")
		{
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.GET("/:id/questions", hm.examHandler.GetExamWithQuestions)
			exams.PUT("/:id", hm.examHandler.UpdateExam)
			exams.DELETE("/:id", hm.examHandler.DeleteExam)
			exams.GET("/:id/stats", hm.examHandler.GetExamStats)
			exams.GET("/:id/export", hm.examHandler.ExportExamResults)

			exams.GET("/:id/submissions", hm.submissionHandler.ListSubmissions)
			exams.GET("/:id/results/:student_id", hm.submissionHandler.GetStudentResult)
			exams.GET("/:id/proctoring-events", hm.submissionHandler.ListProctoringEvents)
		}

		appeals := staff.Group("/appeals")
		{
			appeals.GET("", hm.appealHandler.ListAppeals)
			appeals.GET("/:id", hm.appealHandler.GetAppeal)
			appeals.POST("/:id/resolve", hm.appealHandler.ResolveAppeal)
		}

		students := staff.Group("/students")
		{
			students.POST("", hm.studentHandler.CreateStudent)
			students.GET("", hm.studentHandler.ListStudents)
			students.GET("/groups", hm.studentHandler.ListGroups)
			students.GET("/:id", hm.studentHandler.GetStudent)
			students.PUT("/:id", hm.studentHandler.UpdateStudent)
			students.DELETE("/:id", hm.studentHandler.DeleteStudent)
		}

		staff.POST("/questions/generate", hm.generationHandler.GenerateQuestions)
	}

	// Student routes - authenticated with locally issued session tokens
	me := v1.Group("/me")
	me.Use(hm.studentAuth.AuthMiddleware())
	{
		me.GET("", hm.authHandler.Me)
		me.GET("/exams", hm.studentHandler.GetMyExams)
		me.GET("/exams/:id", hm.studentHandler.GetMyExam)
		me.POST("/exams/:id/submit", hm.submissionHandler.SubmitExam)
		me.POST("/exams/:id/proctoring-events", hm.submissionHandler.ReportProctoringEvent)
		me.GET("/exams/:id/result", hm.submissionHandler.GetMyResult)
		me.POST("/appeals", hm.appealHandler.CreateAppeal)
		me.GET("/appeals", hm.appealHandler.ListMyAppeals)
	}
}
