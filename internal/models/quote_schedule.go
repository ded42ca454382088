package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteSchedule is a user's daily motivational quote slot. Each user has at
// most one. Deletes are hard; there is no soft-delete column.
type QuoteSchedule struct {
	ID            string    `gorm:"type:uuid;primarykey" json:"id"`
	UserID        string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	ScheduledTime string    `gorm:"type:varchar(5);not null" json:"scheduled_time"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (q *QuoteSchedule) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
