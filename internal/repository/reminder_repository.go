package repository

import (
	"time"

	"github.com/taskmint/reminder-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReminderRepository is a GORM implementation of ReminderRepository
type GormReminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository creates a new ReminderRepository
func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &GormReminderRepository{db: db}
}

// Transaction runs fn with a repository bound to a single transaction
func (r *GormReminderRepository) Transaction(fn func(txRepo ReminderRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormReminderRepository{db: tx})
	})
}

// LockTask takes a FOR UPDATE lock on the task row so dedup reads and the
// subsequent creates are atomic with respect to concurrent reconciles.
// SQLite serializes writers on its own and has no FOR UPDATE syntax, so the
// locking clause is only added on postgres.
func (r *GormReminderRepository) LockTask(taskID string) error {
	query := r.db
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var task models.Task
	return query.
		Select("id").
		Where("id = ?", taskID).
		First(&task).Error
}

// Create creates a new reminder
func (r *GormReminderRepository) Create(reminder *models.Reminder) error {
	return r.db.Create(reminder).Error
}

// FindByID finds a reminder by ID with optional preloading
func (r *GormReminderRepository) FindByID(id string, preload ...string) (*models.Reminder, error) {
	var reminder models.Reminder
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&reminder).Error; err != nil {
		return nil, err
	}

	return &reminder, nil
}

// FindMain finds the non-snooze reminder for a task at an exact instant
func (r *GormReminderRepository) FindMain(taskID string, at time.Time) (*models.Reminder, error) {
	return r.findAt(taskID, at, false)
}

// FindSnooze finds the snooze reminder for a task at an exact instant
func (r *GormReminderRepository) FindSnooze(taskID string, at time.Time) (*models.Reminder, error) {
	return r.findAt(taskID, at, true)
}

func (r *GormReminderRepository) findAt(taskID string, at time.Time, snooze bool) (*models.Reminder, error) {
	var reminder models.Reminder
	err := r.db.
		Where("task_id = ? AND reminder_datetime = ? AND is_snooze = ?", taskID, at.UTC(), snooze).
		First(&reminder).Error
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// List retrieves reminders with filtering and pagination
func (r *GormReminderRepository) List(filter ReminderFilter) ([]models.Reminder, int64, error) {
	var reminders []models.Reminder

	query := r.db.Model(&models.Reminder{}).Where("reminders.user_id = ?", filter.UserID)

	if filter.TaskID != nil {
		query = query.Where("reminders.task_id = ?", *filter.TaskID)
	}
	if filter.Sent != nil {
		query = query.Where("reminders.sent = ?", *filter.Sent)
	}
	if filter.IsCompleted != nil {
		query = query.Where("reminders.is_completed = ?", *filter.IsCompleted)
	}
	if filter.IsSnooze != nil {
		query = query.Where("reminders.is_snooze = ?", *filter.IsSnooze)
	}
	if filter.After != nil {
		query = query.Where("reminders.reminder_datetime > ?", filter.After.UTC())
	}
	if filter.Before != nil {
		query = query.Where("reminders.reminder_datetime < ?", filter.Before.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("reminders.reminder_datetime ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("Task").Find(&reminders).Error; err != nil {
		return nil, 0, err
	}

	return reminders, total, nil
}

// ListActiveUnsent lists a task's active, unsent reminders
func (r *GormReminderRepository) ListActiveUnsent(taskID string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.
		Preload("Task").
		Preload("User").
		Where("task_id = ? AND is_active = ? AND sent = ?", taskID, true, false).
		Order("reminder_datetime ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// DeleteFutureUnsent removes the task's unsent reminders strictly after the
// given instant. Used when a task is rescheduled.
func (r *GormReminderRepository) DeleteFutureUnsent(taskID string, after time.Time) error {
	return r.db.
		Where("task_id = ? AND reminder_datetime > ? AND sent = ?", taskID, after.UTC(), false).
		Delete(&models.Reminder{}).Error
}

// DeleteByTask removes all reminders of a task
func (r *GormReminderRepository) DeleteByTask(taskID string) error {
	return r.db.Where("task_id = ?", taskID).Delete(&models.Reminder{}).Error
}

// MarkSent flips sent=true if not already sent. Returns false when the
// reminder was already sent (or does not exist); callers treat that as a
// no-op, not an error.
func (r *GormReminderRepository) MarkSent(id string) (bool, error) {
	res := r.db.Model(&models.Reminder{}).
		Where("id = ? AND sent = ?", id, false).
		Update("sent", true)
	return res.RowsAffected > 0, res.Error
}

// Cancel flips is_active=false, guarded by sent=false and is_completed=false.
// The guard in the WHERE clause makes the transition a compare-and-set so
// concurrent requests cannot cancel a reminder that was sent in between.
func (r *GormReminderRepository) Cancel(id string) (bool, error) {
	res := r.db.Model(&models.Reminder{}).
		Where("id = ? AND sent = ? AND is_completed = ?", id, false, false).
		Update("is_active", false)
	return res.RowsAffected > 0, res.Error
}

// Complete flips is_completed=true and sent=true if not yet completed.
// Cancelled reminders stay cancelled; is_active=false is a terminal state.
func (r *GormReminderRepository) Complete(id string) (bool, error) {
	res := r.db.Model(&models.Reminder{}).
		Where("id = ? AND is_completed = ? AND is_active = ?", id, false, true).
		Updates(map[string]interface{}{"is_completed": true, "sent": true})
	return res.RowsAffected > 0, res.Error
}

// UpdateTime moves the reminder instant, guarded by the scheduled state
func (r *GormReminderRepository) UpdateTime(id string, at time.Time) (bool, error) {
	res := r.db.Model(&models.Reminder{}).
		Where("id = ? AND sent = ? AND is_completed = ? AND is_active = ?", id, false, false, true).
		Update("reminder_datetime", at.UTC())
	return res.RowsAffected > 0, res.Error
}

// DuePending returns active uncompleted reminders whose time has passed or
// that were already sent, oldest first, with relations preloaded for
// publishing. Cancelled reminders are excluded; the sweep never revives them.
func (r *GormReminderRepository) DuePending(now time.Time, limit int) ([]models.Reminder, error) {
	var reminders []models.Reminder
	query := r.db.
		Preload("Task").
		Preload("User").
		Where("is_active = ? AND is_completed = ? AND (reminder_datetime <= ? OR sent = ?)", true, false, now.UTC(), true).
		Order("reminder_datetime ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// CompleteAllForTask marks every uncompleted reminder of the task completed
// and sent, returning the affected reminders with relations preloaded.
func (r *GormReminderRepository) CompleteAllForTask(taskID string) ([]models.Reminder, error) {
	var reminders []models.Reminder

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Preload("Task").
			Preload("User").
			Where("task_id = ? AND is_completed = ?", taskID, false).
			Find(&reminders).Error; err != nil {
			return err
		}

		if len(reminders) == 0 {
			return nil
		}

		if err := tx.Model(&models.Reminder{}).
			Where("task_id = ? AND is_completed = ?", taskID, false).
			Updates(map[string]interface{}{"is_completed": true, "sent": true}).Error; err != nil {
			return err
		}

		for i := range reminders {
			reminders[i].IsCompleted = true
			reminders[i].Sent = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reminders, nil
}
