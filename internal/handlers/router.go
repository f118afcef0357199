package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eztechnick/exam-portal/internal/services"
)

type HandlerManager struct {
	examHandler  *ExamHandler
	adminHandler *AdminHandler
	jwtSecret    string
}

func NewHandlerManager(
	exams services.ExamService,
	admin services.AdminService,
	jwtSecret string,
) *HandlerManager {
	return &HandlerManager{
		examHandler:  NewExamHandler(exams),
		adminHandler: NewAdminHandler(admin),
		jwtSecret:    jwtSecret,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/subjects", hm.examHandler.ListSubjects)

		// Exam session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.examHandler.StartSession)
			sessions.GET("/:id", hm.examHandler.GetSession)
			sessions.PUT("/:id/answers/:question_id", hm.examHandler.SetAnswer)
			sessions.POST("/:id/submit", hm.examHandler.Submit)
			sessions.DELETE("/:id", hm.examHandler.DiscardSession)
		}

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.POST("/login", hm.adminHandler.Login)

			authed := admin.Group("", AdminAuth(hm.jwtSecret))
			{
				authed.GET("/questions", hm.adminHandler.ListQuestions)
				authed.POST("/questions", hm.adminHandler.SaveQuestion)
				authed.DELETE("/questions/:id", hm.adminHandler.DeleteQuestion)

				authed.POST("/subjects", hm.adminHandler.AddSubject)
				authed.DELETE("/subjects/:name", hm.adminHandler.DeleteSubject)

				authed.GET("/results", hm.adminHandler.ListResults)
				authed.GET("/results/export", hm.adminHandler.ExportResults)
			}
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "exam-portal",
	})
}
