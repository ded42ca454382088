package repository

import (
	"github.com/taskmint/reminder-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading. Reminders preload
// in chronological order.
func (r *GormTaskRepository) FindByID(id string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		if p == "Reminders" {
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("reminder_datetime ASC")
			})
			continue
		}
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.user_id = ?", filter.UserID)

	if filter.Completed != nil {
		query = query.Where("tasks.completed = ?", *filter.Completed)
	}
	if filter.CategoryID != nil {
		query = query.Where("tasks.category_id = ?", *filter.CategoryID)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.due_date ASC, tasks.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("Category").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task. Associations are never written through here; the
// reminder set is owned by the lifecycle manager.
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete soft deletes a task together with its reminders
func (r *GormTaskRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.Task{}).Error
	})
}

// CompletionStats counts a user's total, completed and active tasks
func (r *GormTaskRepository) CompletionStats(userID string) (models.CompletionStats, error) {
	var stats models.CompletionStats

	base := r.db.Model(&models.Task{}).Where("user_id = ?", userID)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := base.Session(&gorm.Session{}).Where("completed = ?", true).Count(&stats.Completed).Error; err != nil {
		return stats, err
	}
	stats.Active = stats.Total - stats.Completed

	return stats, nil
}
