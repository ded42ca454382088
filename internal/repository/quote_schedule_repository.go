package repository

import (
	"github.com/taskmint/reminder-api/internal/models"
	"gorm.io/gorm"
)

// GormQuoteScheduleRepository is a GORM implementation of QuoteScheduleRepository
type GormQuoteScheduleRepository struct {
	db *gorm.DB
}

// NewQuoteScheduleRepository creates a new QuoteScheduleRepository
func NewQuoteScheduleRepository(db *gorm.DB) QuoteScheduleRepository {
	return &GormQuoteScheduleRepository{db: db}
}

// Create creates a quote schedule
func (r *GormQuoteScheduleRepository) Create(schedule *models.QuoteSchedule) error {
	return r.db.Create(schedule).Error
}

// FindByUser finds the quote schedule belonging to a user
func (r *GormQuoteScheduleRepository) FindByUser(userID string) (*models.QuoteSchedule, error) {
	var schedule models.QuoteSchedule
	if err := r.db.Where("user_id = ?", userID).First(&schedule).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Update updates a quote schedule
func (r *GormQuoteScheduleRepository) Update(schedule *models.QuoteSchedule) error {
	return r.db.Save(schedule).Error
}

// Delete deletes a quote schedule
func (r *GormQuoteScheduleRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.QuoteSchedule{}).Error
}
