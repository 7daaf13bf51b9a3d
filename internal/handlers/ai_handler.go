package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	BaseHandler
	feedbackService services.FeedbackService
}

func NewAIHandler(feedbackService services.FeedbackService, logger utils.Logger) *AIHandler {
	return &AIHandler{
		BaseHandler:     NewBaseHandler(logger),
		feedbackService: feedbackService,
	}
}

// InterviewFeedback asks the configured model for feedback on a finished
// interview. Model failures still answer 200 with the fallback feedback.
// @Summary Generate interview feedback
// @Tags ai
// @Accept json
// @Produce json
// @Param request body services.FeedbackRequest true "Questions and answers"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /ai/interview-feedback [post]
func (h *AIHandler) InterviewFeedback(c *gin.Context) {
	var req services.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Generating interview feedback", "type", req.Type, "mode", req.Mode, "questions", len(req.Questions))

	result, err := h.feedbackService.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"feedback": result.Feedback,
		"provider": result.Provider,
		"fallback": result.Fallback,
	})
}
