package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile holds per-user presentation settings. Completion statistics are
// computed from the tasks table on read and are not stored here.
type Profile struct {
	ID                      string         `gorm:"type:uuid;primarykey" json:"id"`
	UserID                  string         `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	DisplayName             string         `gorm:"type:varchar(100)" json:"display_name"`
	Timezone                string         `gorm:"type:varchar(50);default:'UTC'" json:"timezone"`
	ThemePreference         string         `gorm:"type:varchar(20);default:'dark'" json:"theme_preference"`
	NotificationPreferences StringBoolMap  `gorm:"type:text" json:"notification_preferences"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
	DeletedAt               gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.NotificationPreferences == nil {
		p.NotificationPreferences = StringBoolMap{
			"email":  true,
			"push":   true,
			"in_app": true,
		}
	}
	return nil
}

// CompletionStats summarizes a user's task counts.
type CompletionStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Active    int64 `json:"active"`
}

// CompletionRate is the completed share as a whole percentage.
func (s CompletionStats) CompletionRate() int {
	if s.Total == 0 {
		return 0
	}
	return int(s.Completed * 100 / s.Total)
}
