package dto

import (
	"time"

	"github.com/taskmint/reminder-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// CategoryDTO represents a category in API responses
type CategoryDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryWithCountsDTO adds task counters to a category
type CategoryWithCountsDTO struct {
	CategoryDTO
	TaskCount          int64 `json:"task_count"`
	ActiveTaskCount    int64 `json:"active_task_count"`
	CompletedTaskCount int64 `json:"completed_task_count"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                string                   `json:"id"`
	Title             string                   `json:"title"`
	Description       string                   `json:"description"`
	Priority          models.Priority          `json:"priority"`
	DueDate           string                   `json:"due_date"`
	Time              string                   `json:"time"`
	DailyReminder     bool                     `json:"daily_reminder"`
	IsRecurring       bool                     `json:"is_recurring"`
	RecurrencePattern models.RecurrencePattern `json:"recurrence_pattern,omitempty"`
	SnoozeTimes       []int                    `json:"snooze_times"`
	Completed         bool                     `json:"completed"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
	Category          *CategoryDTO             `json:"category,omitempty"`
	Reminders         []ReminderDTO            `json:"reminders,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// DateLayout is the wire format for due dates.
const DateLayout = "2006-01-02"

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	}
}

// ToCategoryDTO converts a Category model to CategoryDTO
func ToCategoryDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:                task.ID,
		Title:             task.Title,
		Description:       task.Description,
		Priority:          task.Priority,
		DueDate:           task.DueDate.Format(DateLayout),
		Time:              task.Time,
		DailyReminder:     task.DailyReminder,
		IsRecurring:       task.IsRecurring,
		RecurrencePattern: task.RecurrencePattern,
		SnoozeTimes:       task.SnoozeTimes,
		Completed:         task.Completed,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}

	// Include category if preloaded
	if task.Category != nil && task.Category.ID != "" {
		category := ToCategoryDTO(*task.Category)
		dto.Category = &category
	}

	// Include reminders if preloaded
	if len(task.Reminders) > 0 {
		dto.Reminders = make([]ReminderDTO, len(task.Reminders))
		for i, reminder := range task.Reminders {
			dto.Reminders[i] = ToReminderDTO(reminder)
		}
	}

	return dto
}

// ToTaskListResponse builds a paginated task list response
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
