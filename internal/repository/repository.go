package repository

import (
	"time"

	"github.com/taskmint/reminder-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id string, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task together with its reminders
	Delete(id string) error

	// CompletionStats counts a user's total, completed and active tasks
	CompletionStats(userID string) (models.CompletionStats, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID      string
	Completed   *bool
	CategoryID  *string
	Priority    *models.Priority
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Page        int
	PageSize    int
}

// ReminderRepository defines the interface for reminder data access. Reads
// used for dedup are exact-timestamp equality matches scoped to the task and
// the is_snooze flag. Status transitions are conditional updates guarded by
// the current state; they report whether a row actually changed so callers
// can distinguish a no-op from a transition.
type ReminderRepository interface {
	// Transaction runs fn with a repository bound to a single transaction.
	Transaction(fn func(txRepo ReminderRepository) error) error

	// LockTask takes a row lock on the task so concurrent reconciles for the
	// same task serialize. Only meaningful inside Transaction.
	LockTask(taskID string) error

	// Create creates a new reminder
	Create(reminder *models.Reminder) error

	// FindByID finds a reminder by ID with optional preloading
	FindByID(id string, preload ...string) (*models.Reminder, error)

	// FindMain finds the non-snooze reminder for a task at an exact instant
	FindMain(taskID string, at time.Time) (*models.Reminder, error)

	// FindSnooze finds the snooze reminder for a task at an exact instant
	FindSnooze(taskID string, at time.Time) (*models.Reminder, error)

	// List retrieves reminders with filtering and pagination
	List(filter ReminderFilter) ([]models.Reminder, int64, error)

	// ListActiveUnsent lists a task's active, unsent reminders
	ListActiveUnsent(taskID string) ([]models.Reminder, error)

	// DeleteFutureUnsent removes the task's unsent reminders strictly after
	// the given instant
	DeleteFutureUnsent(taskID string, after time.Time) error

	// DeleteByTask removes all reminders of a task (cascade on task delete)
	DeleteByTask(taskID string) error

	// MarkSent flips sent=true if not already sent
	MarkSent(id string) (bool, error)

	// Cancel flips is_active=false, guarded by sent=false and is_completed=false
	Cancel(id string) (bool, error)

	// Complete flips is_completed=true (and sent=true) if not yet completed
	Complete(id string) (bool, error)

	// UpdateTime moves the reminder instant, guarded by the scheduled state
	UpdateTime(id string, at time.Time) (bool, error)

	// DuePending returns uncompleted reminders whose time has passed or that
	// were already sent, with owner and task preloaded for publishing
	DuePending(now time.Time, limit int) ([]models.Reminder, error)

	// CompleteAllForTask marks every uncompleted reminder of the task
	// completed and sent, returning the affected reminders
	CompleteAllForTask(taskID string) ([]models.Reminder, error)
}

// ReminderFilter holds filtering options for listing reminders
type ReminderFilter struct {
	UserID      string
	TaskID      *string
	Sent        *bool
	IsCompleted *bool
	IsSnooze    *bool
	After       *time.Time
	Before      *time.Time
	Page        int
	PageSize    int
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// Create creates a new category
	Create(category *models.Category) error

	// FindByID finds a category by ID
	FindByID(id string) (*models.Category, error)

	// ListByUser lists a user's categories
	ListByUser(userID string) ([]models.Category, error)

	// Update updates a category
	Update(category *models.Category) error

	// Delete deletes a category, detaching its tasks
	Delete(id string) error

	// TaskCounts returns total, active and completed task counts for a category
	TaskCounts(categoryID string) (total, active, completed int64, err error)
}

// QuoteScheduleRepository defines the interface for quote schedule data access
type QuoteScheduleRepository interface {
	// Create creates a quote schedule
	Create(schedule *models.QuoteSchedule) error

	// FindByUser finds the quote schedule belonging to a user
	FindByUser(userID string) (*models.QuoteSchedule, error)

	// Update updates a quote schedule
	Update(schedule *models.QuoteSchedule) error

	// Delete deletes a quote schedule
	Delete(id string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithProfile creates a user and their profile within a single
	// transaction.
	CreateWithProfile(user *models.User, profile *models.Profile) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindProfile finds the profile belonging to a user
	FindProfile(userID string) (*models.Profile, error)

	// UpdateProfile updates a profile
	UpdateProfile(profile *models.Profile) error
}
