package dto

import (
	"time"

	"github.com/taskmint/reminder-api/internal/models"
)

// QuoteScheduleDTO represents a quote schedule in API responses
type QuoteScheduleDTO struct {
	ID            string    `json:"id"`
	ScheduledTime string    `json:"scheduled_time"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToQuoteScheduleDTO converts a QuoteSchedule model to QuoteScheduleDTO
func ToQuoteScheduleDTO(schedule models.QuoteSchedule) QuoteScheduleDTO {
	return QuoteScheduleDTO{
		ID:            schedule.ID,
		ScheduledTime: schedule.ScheduledTime,
		IsActive:      schedule.IsActive,
		CreatedAt:     schedule.CreatedAt,
		UpdatedAt:     schedule.UpdatedAt,
	}
}
