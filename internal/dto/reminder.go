package dto

import (
	"time"

	"github.com/taskmint/reminder-api/internal/models"
)

// ReminderDTO represents a reminder in API responses
type ReminderDTO struct {
	ID               string    `json:"id"`
	TaskID           string    `json:"task_id"`
	Title            string    `json:"title"`
	ReminderDatetime time.Time `json:"reminder_datetime"`
	Sent             bool      `json:"sent"`
	IsActive         bool      `json:"is_active"`
	IsSnooze         bool      `json:"is_snooze"`
	SnoozeMinutes    int       `json:"snooze_minutes"`
	IsCompleted      bool      `json:"is_completed"`
	CreatedAt        time.Time `json:"created_at"`
	TaskTitle        string    `json:"task_title,omitempty"`
}

// ReminderListResponse represents a paginated list of reminders
type ReminderListResponse struct {
	Reminders  []ReminderDTO `json:"reminders"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
	TotalPages int           `json:"total_pages"`
}

// ToReminderDTO converts a Reminder model to ReminderDTO
func ToReminderDTO(reminder models.Reminder) ReminderDTO {
	dto := ReminderDTO{
		ID:               reminder.ID,
		TaskID:           reminder.TaskID,
		Title:            reminder.Title,
		ReminderDatetime: reminder.ReminderDatetime.UTC(),
		Sent:             reminder.Sent,
		IsActive:         reminder.IsActive,
		IsSnooze:         reminder.IsSnooze,
		SnoozeMinutes:    reminder.SnoozeMinutes,
		IsCompleted:      reminder.IsCompleted,
		CreatedAt:        reminder.CreatedAt,
	}

	// Include the task title if preloaded
	if reminder.Task.ID != "" {
		dto.TaskTitle = reminder.Task.Title
	}

	return dto
}

// ToReminderListResponse builds a paginated reminder list response
func ToReminderListResponse(reminders []models.Reminder, page, pageSize int, totalCount int64) ReminderListResponse {
	items := make([]ReminderDTO, len(reminders))
	for i, reminder := range reminders {
		items[i] = ToReminderDTO(reminder)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return ReminderListResponse{
		Reminders:  items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
