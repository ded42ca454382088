package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type RecurrencePattern string

const (
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// Step returns the fixed interval between occurrences of the pattern.
// Monthly is a 30-day approximation, not calendar-month aware. Unknown
// patterns return 0.
func (p RecurrencePattern) Step() time.Duration {
	switch p {
	case RecurrenceDaily:
		return 24 * time.Hour
	case RecurrenceWeekly:
		return 7 * 24 * time.Hour
	case RecurrenceMonthly:
		return 30 * 24 * time.Hour
	}
	return 0
}

// TimeOfDayLayout is the wire format for a task's time-of-day field.
const TimeOfDayLayout = "15:04"

type Task struct {
	ID                string            `gorm:"type:uuid;primarykey" json:"id"`
	UserID            string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Title             string            `gorm:"type:varchar(200);not null" json:"title"`
	Description       string            `gorm:"type:text" json:"description"`
	CategoryID        *string           `gorm:"type:uuid;index" json:"category_id"`
	Priority          Priority          `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	DueDate           time.Time         `gorm:"type:date;not null" json:"due_date"`
	Time              string            `gorm:"type:varchar(5);not null" json:"time"`
	DailyReminder     bool              `gorm:"not null;default:false" json:"daily_reminder"`
	IsRecurring       bool              `gorm:"not null;default:false" json:"is_recurring"`
	RecurrencePattern RecurrencePattern `gorm:"type:varchar(50)" json:"recurrence_pattern"`
	SnoozeTimes       IntList           `gorm:"type:text" json:"snooze_times"`
	Completed         bool              `gorm:"not null;default:false" json:"completed"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations
	User      User       `gorm:"foreignKey:UserID" json:"-"`
	Category  *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Reminders []Reminder `gorm:"foreignKey:TaskID" json:"reminders,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// DueAt combines the due date and time-of-day into an absolute UTC instant.
// A malformed time-of-day falls back to midnight.
func (t *Task) DueAt() time.Time {
	tod, err := time.Parse(TimeOfDayLayout, t.Time)
	if err != nil {
		tod = time.Time{}
	}
	d := t.DueDate.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC)
}
