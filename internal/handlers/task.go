package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskmint/reminder-api/internal/dto"
	apierrors "github.com/taskmint/reminder-api/internal/errors"
	"github.com/taskmint/reminder-api/internal/middleware"
	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/repository"
	"github.com/taskmint/reminder-api/internal/services"
	"github.com/taskmint/reminder-api/internal/utils"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the current user's tasks. Supports filtering by
// completion state, category, priority and a due date window.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TaskFilter{
		UserID:   userID,
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if v := c.Query("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}
	if v := c.Query("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := c.Query("priority"); v != "" {
		priority := models.Priority(v)
		if !priority.Valid() {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		filter.Priority = &priority
	}
	if v := c.Query("due_from"); v != "" {
		from, err := time.Parse(dto.DateLayout, v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_from date")
			return
		}
		filter.DueDateFrom = &from
	}
	if v := c.Query("due_to"); v != "" {
		to, err := time.Parse(dto.DateLayout, v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_to date")
			return
		}
		filter.DueDateTo = &to
	}

	tasks, total, err := h.taskService.ListTasks(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a single task with its reminders.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.taskService.GetTask(c.Param("id"), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task and derives its reminder schedule.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title             string  `json:"title" binding:"required,max=200"`
		Description       string  `json:"description"`
		CategoryID        *string `json:"category_id"`
		Priority          string  `json:"priority"`
		DueDate           string  `json:"due_date" binding:"required"`
		Time              string  `json:"time" binding:"required"`
		DailyReminder     bool    `json:"daily_reminder"`
		IsRecurring       bool    `json:"is_recurring"`
		RecurrencePattern string  `json:"recurrence_pattern"`
		SnoozeTimes       []int   `json:"snooze_times"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dueDate, err := time.Parse(dto.DateLayout, req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, "Invalid due_date, expected YYYY-MM-DD")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		UserID:            userID,
		Title:             req.Title,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Priority:          models.Priority(req.Priority),
		DueDate:           dueDate,
		Time:              req.Time,
		DailyReminder:     req.DailyReminder,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: models.RecurrencePattern(req.RecurrencePattern),
		SnoozeTimes:       req.SnoozeTimes,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Changing the due date or time rebuilds
// the task's pending reminders.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateTaskRequest struct {
		Title             *string `json:"title"`
		Description       *string `json:"description"`
		CategoryID        *string `json:"category_id"`
		ClearCategory     bool    `json:"clear_category"`
		Priority          *string `json:"priority"`
		DueDate           *string `json:"due_date"`
		Time              *string `json:"time"`
		DailyReminder     *bool   `json:"daily_reminder"`
		IsRecurring       *bool   `json:"is_recurring"`
		RecurrencePattern *string `json:"recurrence_pattern"`
		SnoozeTimes       []int   `json:"snooze_times"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		Time:          req.Time,
		DailyReminder: req.DailyReminder,
		IsRecurring:   req.IsRecurring,
		SnoozeTimes:   req.SnoozeTimes,
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		input.Priority = &priority
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse(dto.DateLayout, *req.DueDate)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date, expected YYYY-MM-DD")
			return
		}
		input.DueDate = &dueDate
	}
	if req.RecurrencePattern != nil {
		pattern := models.RecurrencePattern(*req.RecurrencePattern)
		input.RecurrencePattern = &pattern
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), c.Param("id"), userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CompleteTask marks the task done and closes out its reminders.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.taskService.CompleteTask(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes the task and its reminders.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrCategoryNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidTime),
		errors.Is(err, services.ErrPastDueDate),
		errors.Is(err, services.ErrRecurrenceRequired),
		errors.Is(err, services.ErrRecurrenceWithoutFlag),
		errors.Is(err, services.ErrInvalidSnooze):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
