package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskmint/reminder-api/internal/dto"
	apierrors "github.com/taskmint/reminder-api/internal/errors"
	"github.com/taskmint/reminder-api/internal/middleware"
	"github.com/taskmint/reminder-api/internal/repository"
	"github.com/taskmint/reminder-api/internal/services"
	"github.com/taskmint/reminder-api/internal/utils"
)

// ReminderHandler coordinates reminder-related HTTP handlers.
type ReminderHandler struct {
	reminderService *services.ReminderService
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
	}
}

// ListReminders returns the current user's reminders. Supports filtering by
// task, sent/completed state, snooze flag and a datetime window.
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.ReminderFilter{
		UserID:   userID,
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if v := c.Query("task_id"); v != "" {
		filter.TaskID = &v
	}
	if v := c.Query("sent"); v != "" {
		sent := v == "true"
		filter.Sent = &sent
	}
	if v := c.Query("is_completed"); v != "" {
		completed := v == "true"
		filter.IsCompleted = &completed
	}
	if v := c.Query("is_snooze"); v != "" {
		snooze := v == "true"
		filter.IsSnooze = &snooze
	}
	if v := c.Query("after"); v != "" {
		after, err := time.Parse(time.RFC3339, v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid after datetime")
			return
		}
		filter.After = &after
	}
	if v := c.Query("before"); v != "" {
		before, err := time.Parse(time.RFC3339, v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid before datetime")
			return
		}
		filter.Before = &before
	}

	reminders, total, err := h.reminderService.ListReminders(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch reminders")
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderListResponse(reminders, params.Page, params.Limit, total))
}

// GetReminder returns a single reminder.
func (h *ReminderHandler) GetReminder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	reminder, err := h.reminderService.GetReminder(c.Param("id"), userID)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderDTO(*reminder))
}

// CreateReminder creates a one-off reminder for a task, outside the derived
// schedule.
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateReminderRequest struct {
		TaskID           string    `json:"task_id" binding:"required"`
		Title            string    `json:"title" binding:"required,max=200"`
		ReminderDatetime time.Time `json:"reminder_datetime" binding:"required"`
	}

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	reminder, err := h.reminderService.CreateReminder(c.Request.Context(), services.CreateReminderInput{
		UserID:           userID,
		TaskID:           req.TaskID,
		Title:            req.Title,
		ReminderDatetime: req.ReminderDatetime,
	})
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToReminderDTO(*reminder))
}

// MarkSent records that the reminder was delivered. Repeating the call on an
// already-sent reminder succeeds without effect.
func (h *ReminderHandler) MarkSent(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	reminder, err := h.reminderService.MarkSent(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderDTO(*reminder))
}

// Cancel deactivates a reminder that has not fired yet.
func (h *ReminderHandler) Cancel(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	reminder, err := h.reminderService.Cancel(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderDTO(*reminder))
}

// Reschedule moves a pending reminder to a new future instant.
func (h *ReminderHandler) Reschedule(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type RescheduleRequest struct {
		ReminderDatetime time.Time `json:"reminder_datetime" binding:"required"`
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	reminder, err := h.reminderService.Reschedule(c.Request.Context(), c.Param("id"), userID, req.ReminderDatetime)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderDTO(*reminder))
}

// Complete marks a reminder as fully processed.
func (h *ReminderHandler) Complete(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	reminder, err := h.reminderService.Complete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderDTO(*reminder))
}

func respondReminderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrReminderNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.InvalidTransition(c, err.Error())
	case errors.Is(err, services.ErrPastDatetime),
		errors.Is(err, services.ErrReminderTitleRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
