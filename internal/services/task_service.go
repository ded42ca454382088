package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound is returned when a task does not exist or belongs to
	// another user
	ErrTaskNotFound = errors.New("task not found")
	// ErrTitleRequired is returned when a task title is empty
	ErrTitleRequired = errors.New("task title is required")
	// ErrInvalidPriority is returned when a priority value is not recognized
	ErrInvalidPriority = errors.New("invalid task priority")
	// ErrInvalidTime is returned when a reminder time is not HH:MM
	ErrInvalidTime = errors.New("invalid reminder time, expected HH:MM")
	// ErrPastDueDate is returned when a new task is due in the past
	ErrPastDueDate = errors.New("due date cannot be in the past")
	// ErrRecurrenceRequired is returned when a recurring task has no pattern
	ErrRecurrenceRequired = errors.New("recurrence pattern is required for recurring tasks")
	// ErrRecurrenceWithoutFlag is returned when a pattern is set on a
	// non-recurring task
	ErrRecurrenceWithoutFlag = errors.New("recurrence pattern requires is_recurring")
	// ErrInvalidSnooze is returned when a snooze offset is zero or negative
	ErrInvalidSnooze = errors.New("snooze offsets must be positive minutes")
)

// TaskService handles task business logic. Every write that affects the
// schedule hands the task to the reminder lifecycle afterwards, so the
// reminder set always tracks the task's current due date, time and
// recurrence settings.
type TaskService struct {
	taskRepo     repository.TaskRepository
	categoryRepo repository.CategoryRepository
	lifecycle    *ReminderLifecycle
	logger       *zap.Logger
	now          func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, categoryRepo repository.CategoryRepository, lifecycle *ReminderLifecycle, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		lifecycle:    lifecycle,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClock overrides the service clock (used for testing).
func (s *TaskService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateTaskInput contains the data needed to create a task
type CreateTaskInput struct {
	UserID            string
	Title             string
	Description       string
	CategoryID        *string
	Priority          models.Priority
	DueDate           time.Time
	Time              string
	DailyReminder     bool
	IsRecurring       bool
	RecurrencePattern models.RecurrencePattern
	SnoozeTimes       []int
}

// CreateTask creates a task and materializes its reminder schedule.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if _, err := time.Parse(models.TimeOfDayLayout, input.Time); err != nil {
		return nil, ErrInvalidTime
	}
	if beforeToday(input.DueDate, s.now()) {
		return nil, ErrPastDueDate
	}
	if err := validateRecurrence(input.IsRecurring, input.RecurrencePattern); err != nil {
		return nil, err
	}
	snoozes, err := normalizeSnoozes(input.SnoozeTimes)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(input.CategoryID, input.UserID); err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:            input.UserID,
		Title:             input.Title,
		Description:       input.Description,
		CategoryID:        input.CategoryID,
		Priority:          input.Priority,
		DueDate:           input.DueDate,
		Time:              input.Time,
		DailyReminder:     input.DailyReminder,
		IsRecurring:       input.IsRecurring,
		RecurrencePattern: input.RecurrencePattern,
		SnoozeTimes:       snoozes,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created, err := s.taskRepo.FindByID(task.ID, "User", "Category")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	if err := s.lifecycle.Reconcile(ctx, created, models.ActionCreated); err != nil {
		return nil, fmt.Errorf("failed to schedule reminders: %w", err)
	}

	return created, nil
}

// GetTask returns a task owned by the user.
func (s *TaskService) GetTask(id, userID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, "User", "Category", "Reminders")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.UserID != userID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns the user's tasks matching the filter.
func (s *TaskService) ListTasks(filter repository.TaskFilter) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTaskInput contains the data for updating a task. Nil pointers leave
// the corresponding field unchanged.
type UpdateTaskInput struct {
	Title             *string
	Description       *string
	CategoryID        *string
	ClearCategory     bool
	Priority          *models.Priority
	DueDate           *time.Time
	Time              *string
	DailyReminder     *bool
	IsRecurring       *bool
	RecurrencePattern *models.RecurrencePattern
	SnoozeTimes       []int
}

// UpdateTask applies the changes and keeps the reminder schedule in step.
// Moving the due date or time rebuilds the future reminders from scratch;
// changing other schedule fields (daily flag, recurrence, snoozes) adds the
// newly required reminders without disturbing existing ones.
func (s *TaskService) UpdateTask(ctx context.Context, id, userID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(id, userID)
	if err != nil {
		return nil, err
	}

	rescheduled := false
	scheduleChanged := false

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.ClearCategory {
		task.CategoryID = nil
	} else if input.CategoryID != nil {
		if err := s.checkCategory(input.CategoryID, userID); err != nil {
			return nil, err
		}
		task.CategoryID = input.CategoryID
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil && !sameDate(*input.DueDate, task.DueDate) {
		task.DueDate = *input.DueDate
		rescheduled = true
	}
	if input.Time != nil && *input.Time != task.Time {
		if _, err := time.Parse(models.TimeOfDayLayout, *input.Time); err != nil {
			return nil, ErrInvalidTime
		}
		task.Time = *input.Time
		rescheduled = true
	}
	if input.DailyReminder != nil && *input.DailyReminder != task.DailyReminder {
		task.DailyReminder = *input.DailyReminder
		scheduleChanged = true
	}
	if input.IsRecurring != nil {
		task.IsRecurring = *input.IsRecurring
		scheduleChanged = true
	}
	if input.RecurrencePattern != nil {
		task.RecurrencePattern = *input.RecurrencePattern
		scheduleChanged = true
	}
	if input.SnoozeTimes != nil {
		snoozes, err := normalizeSnoozes(input.SnoozeTimes)
		if err != nil {
			return nil, err
		}
		task.SnoozeTimes = snoozes
		scheduleChanged = true
	}

	if err := validateRecurrence(task.IsRecurring, task.RecurrencePattern); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	switch {
	case rescheduled:
		if err := s.lifecycle.HandleReschedule(ctx, task); err != nil {
			return nil, fmt.Errorf("failed to reschedule reminders: %w", err)
		}
	case scheduleChanged:
		if err := s.lifecycle.Reconcile(ctx, task, models.ActionUpdated); err != nil {
			return nil, fmt.Errorf("failed to update reminders: %w", err)
		}
	}

	return task, nil
}

// CompleteTask marks the task done and closes out all of its reminders.
func (s *TaskService) CompleteTask(ctx context.Context, id, userID string) (*models.Task, error) {
	task, err := s.GetTask(id, userID)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		return task, nil
	}

	task.Completed = true
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	if err := s.lifecycle.HandleTaskCompleted(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to complete reminders: %w", err)
	}

	return task, nil
}

// DeleteTask removes the task and its reminders, announcing the cancellation
// of every reminder that was still pending delivery.
func (s *TaskService) DeleteTask(ctx context.Context, id, userID string) error {
	task, err := s.GetTask(id, userID)
	if err != nil {
		return err
	}

	if err := s.lifecycle.HandleDelete(ctx, task); err != nil {
		return fmt.Errorf("failed to cancel reminders: %w", err)
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) checkCategory(categoryID *string, userID string) error {
	if categoryID == nil {
		return nil
	}
	category, err := s.categoryRepo.FindByID(*categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to find category: %w", err)
	}
	if category.UserID != userID {
		return ErrCategoryNotFound
	}
	return nil
}

func validateRecurrence(isRecurring bool, pattern models.RecurrencePattern) error {
	if isRecurring && pattern == "" {
		return ErrRecurrenceRequired
	}
	if !isRecurring && pattern != "" {
		return ErrRecurrenceWithoutFlag
	}
	return nil
}

// normalizeSnoozes rejects non-positive offsets and drops duplicates while
// keeping the caller's order.
func normalizeSnoozes(snoozes []int) (models.IntList, error) {
	if len(snoozes) == 0 {
		return nil, nil
	}
	seen := make(map[int]bool, len(snoozes))
	out := make(models.IntList, 0, len(snoozes))
	for _, minutes := range snoozes {
		if minutes <= 0 {
			return nil, ErrInvalidSnooze
		}
		if seen[minutes] {
			continue
		}
		seen[minutes] = true
		out = append(out, minutes)
	}
	return out, nil
}

func beforeToday(dueDate, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
