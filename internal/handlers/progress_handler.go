package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// SaveAttempt stores a finished interview and updates the user's progress
// @Summary Save interview attempt
// @Tags progress
// @Accept json
// @Produce json
// @Param attempt body services.SaveAttemptRequest true "Attempt data"
// @Success 201 {object} services.SaveAttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /progress/save-attempt [post]
func (h *ProgressHandler) SaveAttempt(c *gin.Context) {
	var req services.SaveAttemptRequest
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

	h.LogRequest(c, "Saving interview attempt", "type", req.Type, "mode", req.Mode)

	resp, err := h.progressService.SaveAttempt(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListAttempts returns the user's attempts, newest first
// @Summary List interview attempts
// @Tags progress
// @Produce json
// @Param type query string false "Interview type"
// @Param mode query string false "Interview mode"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.AttemptListResponse
// @Router /progress/attempts [get]
func (h *ProgressHandler) ListAttempts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filters, ok := h.parseAttemptFilters(c)
	if !ok {
		return
	}

	list, err := h.progressService.ListAttempts(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetProgress returns the running counters for the user
// @Summary Get user progress
// @Tags progress
// @Produce json
// @Success 200 {object} models.UserProgress
// @Router /progress [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	progress, err := h.progressService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetStats returns aggregated attempt statistics
// @Summary Get progress stats
// @Tags progress
// @Produce json
// @Success 200 {object} models.ProgressStats
// @Router /progress/stats [get]
func (h *ProgressHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.progressService.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportAttempts downloads the attempts as an Excel workbook
// @Summary Export interview attempts
// @Tags progress
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /progress/attempts/export [get]
func (h *ProgressHandler) ExportAttempts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filters, ok := h.parseAttemptFilters(c)
	if !ok {
		return
	}
	filters.Limit = repositories.MaxAttemptLimit

	h.LogRequest(c, "Exporting interview attempts")

	data, err := h.progressService.ExportAttempts(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("interview_attempts_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *ProgressHandler) parseAttemptFilters(c *gin.Context) (repositories.AttemptFilters, bool) {
	var filters repositories.AttemptFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return filters, false
	}
	return filters, true
}
