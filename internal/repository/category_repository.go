package repository

import (
	"github.com/taskmint/reminder-api/internal/models"
	"gorm.io/gorm"
)

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create creates a new category
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

// FindByID finds a category by ID
func (r *GormCategoryRepository) FindByID(id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByUser lists a user's categories
func (r *GormCategoryRepository) ListByUser(userID string) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Update updates a category
func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

// Delete deletes a category and detaches its tasks
func (r *GormCategoryRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Tasks survive their category; the reference is nulled out.
		if err := tx.Model(&models.Task{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.Category{}).Error
	})
}

// TaskCounts returns total, active and completed task counts for a category
func (r *GormCategoryRepository) TaskCounts(categoryID string) (total, active, completed int64, err error) {
	base := r.db.Model(&models.Task{}).Where("category_id = ?", categoryID)

	if err = base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return
	}
	if err = base.Session(&gorm.Session{}).Where("completed = ?", true).Count(&completed).Error; err != nil {
		return
	}
	active = total - completed
	return
}
