package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type InterviewHandler struct {
	BaseHandler
	roomService services.RoomService
}

func NewInterviewHandler(roomService services.RoomService, logger utils.Logger) *InterviewHandler {
	return &InterviewHandler{
		BaseHandler: NewBaseHandler(logger),
		roomService: roomService,
	}
}

// StartSession opens a session for an interview type. Unknown types fall
// back to technical.
// @Summary Start interview session
// @Tags interview
// @Accept json
// @Produce json
// @Param request body StartSessionRequest false "Interview type"
// @Success 201 {object} services.SessionView
// @Router /interview/sessions [post]
func (h *InterviewHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting interview session", "type", req.Type)

	view, err := h.roomService.Start(c.Request.Context(), userID, interview.Type(req.Type))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession returns the current snapshot of a session
// @Summary Get interview session
// @Tags interview
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionView
// @Failure 404 {object} ErrorResponse
// @Router /interview/sessions/{id} [get]
func (h *InterviewHandler) GetSession(c *gin.Context) {
	h.sessionAction(c, func(userID, sessionID string) (*services.SessionView, error) {
		return h.roomService.Get(c.Request.Context(), userID, sessionID)
	})
}

// SelectMode loads the question set for the chosen mode
// @Summary Select interview mode
// @Tags interview
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body SelectModeRequest true "Mode"
// @Success 200 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /interview/sessions/{id}/mode [post]
func (h *InterviewHandler) SelectMode(c *gin.Context) {
	var req SelectModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.sessionAction(c, func(userID, sessionID string) (*services.SessionView, error) {
		return h.roomService.SelectMode(c.Request.Context(), userID, sessionID, interview.Mode(req.Mode))
	})
}

// AnswerQuestion records the answer for one question
// @Summary Answer question
// @Tags interview
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param question_id path string true "Question ID"
// @Param request body AnswerRequest true "Answer"
// @Success 200 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /interview/sessions/{id}/answers/{question_id} [put]
func (h *InterviewHandler) AnswerQuestion(c *gin.Context) {
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if req.Value.IsZero() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: "value is required",
		})
		return
	}

	h.sessionAction(c, func(userID, sessionID string) (*services.SessionView, error) {
		return h.roomService.Answer(c.Request.Context(), userID, sessionID, questionID, req.Value)
	})
}

// Navigate jumps to a question index
// @Summary Navigate to question
// @Tags interview
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body NavigateRequest true "Index"
// @Success 200 {object} services.SessionView
// @Router /interview/sessions/{id}/navigate [post]
func (h *InterviewHandler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.sessionAction(c, func(userID, sessionID string) (*services.SessionView, error) {
		return h.roomService.Navigate(c.Request.Context(), userID, sessionID, *req.Index)
	})
}

// Next submits the displayed question and moves forward
// @Router /interview/sessions/{id}/next [post]
func (h *InterviewHandler) Next(c *gin.Context) {
	h.sessionAction(c, func(userID, sessionID string) (*services.SessionView, error) {
		return h.roomService.Next(c.Request.Context(), userID, sessionID)
	})
}

// @Router /interview/sessions/{id}/prev [post]
func (h *InterviewHandler) Prev(c *gin.Context) {
	h.sessionAction(c, func(userID, sessionID string) (*services.SessionView, error) {
		return h.roomService.Prev(c.Request.Context(), userID, sessionID)
	})
}

// Submit marks the displayed question submitted without moving
// @Router /interview/sessions/{id}/submit [post]
func (h *InterviewHandler) Submit(c *gin.Context) {
	h.sessionAction(c, func(userID, sessionID string) (*services.SessionView, error) {
		return h.roomService.Submit(c.Request.Context(), userID, sessionID)
	})
}

// @Router /interview/sessions/{id}/restart [post]
func (h *InterviewHandler) Restart(c *gin.Context) {
	h.sessionAction(c, func(userID, sessionID string) (*services.SessionView, error) {
		return h.roomService.Restart(c.Request.Context(), userID, sessionID)
	})
}

// EndSession drops a session and its timer
// @Router /interview/sessions/{id} [delete]
func (h *InterviewHandler) EndSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.roomService.End(c.Request.Context(), userID, sessionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Session ended"})
}

// GetLastReport returns the report stored after the last completed session
// @Router /interview/report [get]
func (h *InterviewHandler) GetLastReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	report, err := h.roomService.LastReport(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// @Router /interview/plan [get]
func (h *InterviewHandler) GetPracticePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	plan, err := h.roomService.PracticePlan(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// @Router /interview/feedback [get]
func (h *InterviewHandler) GetLastFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	feedback, err := h.roomService.LastFeedback(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// GetLocalAttempts lists attempts kept locally because the save failed
// @Router /interview/local-attempts [get]
func (h *InterviewHandler) GetLocalAttempts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	attempts, err := h.roomService.LocalAttempts(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}

func (h *InterviewHandler) sessionAction(c *gin.Context, action func(userID, sessionID string) (*services.SessionView, error)) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view, err := action(userID, sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
