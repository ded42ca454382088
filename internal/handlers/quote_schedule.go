package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskmint/reminder-api/internal/dto"
	apierrors "github.com/taskmint/reminder-api/internal/errors"
	"github.com/taskmint/reminder-api/internal/middleware"
	"github.com/taskmint/reminder-api/internal/services"
)

// QuoteScheduleHandler coordinates quote schedule HTTP handlers.
type QuoteScheduleHandler struct {
	scheduleService *services.QuoteScheduleService
}

// NewQuoteScheduleHandler creates a new QuoteScheduleHandler.
func NewQuoteScheduleHandler(scheduleService *services.QuoteScheduleService) *QuoteScheduleHandler {
	return &QuoteScheduleHandler{
		scheduleService: scheduleService,
	}
}

// GetQuoteSchedule returns the current user's quote schedule.
func (h *QuoteScheduleHandler) GetQuoteSchedule(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	schedule, err := h.scheduleService.GetQuoteSchedule(userID)
	if err != nil {
		respondQuoteScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteScheduleDTO(*schedule))
}

// CreateQuoteSchedule sets up the current user's daily quote slot.
func (h *QuoteScheduleHandler) CreateQuoteSchedule(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateQuoteScheduleRequest struct {
		ScheduledTime string `json:"scheduled_time" binding:"required"`
	}

	var req CreateQuoteScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	schedule, err := h.scheduleService.CreateQuoteSchedule(userID, req.ScheduledTime)
	if err != nil {
		respondQuoteScheduleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToQuoteScheduleDTO(*schedule))
}

// UpdateQuoteSchedule changes the slot time or toggles delivery.
func (h *QuoteScheduleHandler) UpdateQuoteSchedule(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateQuoteScheduleRequest struct {
		ScheduledTime *string `json:"scheduled_time"`
		IsActive      *bool   `json:"is_active"`
	}

	var req UpdateQuoteScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	schedule, err := h.scheduleService.UpdateQuoteSchedule(userID, services.UpdateQuoteScheduleInput{
		ScheduledTime: req.ScheduledTime,
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondQuoteScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteScheduleDTO(*schedule))
}

// DeleteQuoteSchedule removes the current user's quote schedule.
func (h *QuoteScheduleHandler) DeleteQuoteSchedule(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.scheduleService.DeleteQuoteSchedule(userID); err != nil {
		respondQuoteScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quote schedule deleted successfully",
	})
}

func respondQuoteScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQuoteScheduleNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrQuoteScheduleExists):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidTime):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
