package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/interview-service/internal/monitoring"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	progressHandler  *ProgressHandler
	aiHandler        *AIHandler
	interviewHandler *InterviewHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		progressHandler:  NewProgressHandler(serviceManager.Progress(), logger),
		aiHandler:        NewAIHandler(serviceManager.Feedback(), logger),
		interviewHandler: NewInterviewHandler(serviceManager.Room(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", HealthCheck)

	authed := api.Group("", UserIDMiddleware())
	{
		progress := authed.Group("/progress")
		{
			progress.GET("", hm.progressHandler.GetProgress)
			progress.POST("/save-attempt", hm.progressHandler.SaveAttempt)
			progress.GET("/attempts", hm.progressHandler.ListAttempts)
			progress.GET("/attempts/export", hm.progressHandler.ExportAttempts)
			progress.GET("/stats", hm.progressHandler.GetStats)
		}

		ai := authed.Group("/ai")
		{
			ai.POST("/interview-feedback", hm.aiHandler.InterviewFeedback)
		}

		room := authed.Group("/interview")
		{
			room.POST("/sessions", hm.interviewHandler.StartSession)
			room.GET("/sessions/:id", hm.interviewHandler.GetSession)
			room.DELETE("/sessions/:id", hm.interviewHandler.EndSession)
			room.POST("/sessions/:id/mode", hm.interviewHandler.SelectMode)
			room.PUT("/sessions/:id/answers/:question_id", hm.interviewHandler.AnswerQuestion)
			room.POST("/sessions/:id/navigate", hm.interviewHandler.Navigate)
			room.POST("/sessions/:id/next", hm.interviewHandler.Next)
			room.POST("/sessions/:id/prev", hm.interviewHandler.Prev)
			room.POST("/sessions/:id/submit", hm.interviewHandler.Submit)
			room.POST("/sessions/:id/restart", hm.interviewHandler.Restart)

			room.GET("/report", hm.interviewHandler.GetLastReport)
			room.GET("/plan", hm.interviewHandler.GetPracticePlan)
			room.GET("/feedback", hm.interviewHandler.GetLastFeedback)
			room.GET("/local-attempts", hm.interviewHandler.GetLocalAttempts)
		}
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "interview-service",
	})
}
