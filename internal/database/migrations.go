package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Exact-timestamp dedup lookups during reconcile
		{"reminders", "idx_reminders_task_datetime_snooze", "task_id, reminder_datetime, is_snooze"},

		// Completion sweep scans
		{"reminders", "idx_reminders_datetime_completed", "reminder_datetime, is_completed"},
		{"reminders", "idx_reminders_sent_completed", "sent, is_completed"},

		// Owner-scoped listings
		{"reminders", "idx_reminders_user_id", "user_id"},
		{"tasks", "idx_tasks_user_id", "user_id"},
		{"tasks", "idx_tasks_category_id", "category_id"},
		{"tasks", "idx_tasks_due_date", "due_date"},
		{"categories", "idx_categories_user_id", "user_id"},
	}

	for _, idx := range indexes {
		// Check if index already exists
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
