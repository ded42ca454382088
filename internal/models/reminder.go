package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderAction labels a reminder state transition on the outbound stream.
type ReminderAction string

const (
	ActionCreated     ReminderAction = "created"
	ActionScheduled   ReminderAction = "scheduled"
	ActionRescheduled ReminderAction = "rescheduled"
	ActionCancelled   ReminderAction = "cancelled"
	ActionSent        ReminderAction = "sent"
	ActionCompleted   ReminderAction = "completed"
	ActionUpdated     ReminderAction = "updated"
)

// Reminder is a single derived notification occurrence for a task. Reminders
// are created by the lifecycle manager, never directly by API callers, and
// cannot outlive their task.
type Reminder struct {
	ID               string         `gorm:"type:uuid;primarykey" json:"id"`
	UserID           string         `gorm:"type:uuid;not null;index" json:"user_id"`
	TaskID           string         `gorm:"type:uuid;not null;index" json:"task_id"`
	Title            string         `gorm:"type:varchar(200);not null" json:"title"`
	ReminderDatetime time.Time      `gorm:"not null" json:"reminder_datetime"`
	Sent             bool           `gorm:"not null;default:false" json:"sent"`
	IsActive         bool           `gorm:"not null;default:true" json:"is_active"`
	IsSnooze         bool           `gorm:"not null;default:false" json:"is_snooze"`
	SnoozeMinutes    int            `gorm:"not null;default:0" json:"snooze_minutes"`
	IsCompleted      bool           `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// State machine predicates. The authoritative guards live in the repository's
// conditional updates; these mirror them for pre-flight checks and tests.

// CanCancel reports whether the reminder is still in the scheduled state.
// Sent and completed reminders are terminal for cancellation purposes.
func (r *Reminder) CanCancel() bool {
	return !r.Sent && !r.IsCompleted
}

// CanReschedule reports whether the reminder time may still be moved.
func (r *Reminder) CanReschedule() bool {
	return !r.Sent && !r.IsCompleted && r.IsActive
}

// DueForCompletion reports whether the periodic sweep should advance the
// reminder to completed: its time has passed or it has already been sent.
func (r *Reminder) DueForCompletion(now time.Time) bool {
	if r.IsCompleted {
		return false
	}
	return r.Sent || !r.ReminderDatetime.After(now)
}
