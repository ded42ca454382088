package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User  User   `gorm:"foreignKey:UserID" json:"-"`
	Tasks []Task `gorm:"foreignKey:CategoryID" json:"tasks,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
