package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/publisher"
	"github.com/taskmint/reminder-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrReminderNotFound is returned when a reminder does not exist
	ErrReminderNotFound = errors.New("reminder not found")
	// ErrInvalidTransition is returned when a reminder's current state forbids
	// the requested transition
	ErrInvalidTransition = errors.New("invalid reminder state transition")
	// ErrPastDatetime is returned when a reminder timestamp is not in the future
	ErrPastDatetime = errors.New("reminder datetime must be in the future")
	// ErrReminderTitleRequired is returned when a reminder title is empty
	ErrReminderTitleRequired = errors.New("reminder title is required")
)

// ReminderService drives individual reminder state transitions. All
// transitions are enforced by conditional updates in the repository, so
// concurrent calls cannot double-fire an event.
type ReminderService struct {
	reminderRepo repository.ReminderRepository
	taskRepo     repository.TaskRepository
	publisher    publisher.Publisher
	dispatch     DispatchScheduler
	logger       *zap.Logger
	now          func() time.Time
}

// NewReminderService creates a new ReminderService. dispatch may be nil.
func NewReminderService(reminderRepo repository.ReminderRepository, taskRepo repository.TaskRepository, pub publisher.Publisher, dispatch DispatchScheduler, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		taskRepo:     taskRepo,
		publisher:    pub,
		dispatch:     dispatch,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClock overrides the service clock (used for testing).
func (s *ReminderService) SetClock(now func() time.Time) {
	s.now = now
}

// GetReminder returns a reminder owned by the user.
func (s *ReminderService) GetReminder(id, userID string) (*models.Reminder, error) {
	reminder, err := s.reminderRepo.FindByID(id, "Task", "User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to find reminder: %w", err)
	}
	if reminder.UserID != userID {
		return nil, ErrReminderNotFound
	}
	return reminder, nil
}

// ListReminders returns the user's reminders matching the filter.
func (s *ReminderService) ListReminders(filter repository.ReminderFilter) ([]models.Reminder, int64, error) {
	reminders, total, err := s.reminderRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, total, nil
}

// CreateReminderInput carries the fields for a directly created reminder.
type CreateReminderInput struct {
	UserID           string
	TaskID           string
	Title            string
	ReminderDatetime time.Time
}

// CreateReminder creates a one-off reminder outside the derived schedule,
// for example a manual follow-up a user attaches to a task. The timestamp
// must be strictly in the future. The new reminder is published with action
// "scheduled" and enqueued for dispatch.
func (s *ReminderService) CreateReminder(ctx context.Context, input CreateReminderInput) (*models.Reminder, error) {
	if input.Title == "" {
		return nil, ErrReminderTitleRequired
	}
	if !input.ReminderDatetime.After(s.now()) {
		return nil, ErrPastDatetime
	}

	task, err := s.taskRepo.FindByID(input.TaskID, "User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.UserID != input.UserID {
		return nil, ErrTaskNotFound
	}

	reminder := &models.Reminder{
		UserID:           input.UserID,
		TaskID:           task.ID,
		Title:            input.Title,
		ReminderDatetime: input.ReminderDatetime.UTC(),
		IsActive:         true,
	}
	if err := s.reminderRepo.Create(reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	reminder.Task = *task
	reminder.User = task.User
	s.publisher.Publish(ctx, reminder, models.ActionScheduled)

	if s.dispatch != nil {
		if err := s.dispatch.Schedule(reminder.ID, reminder.ReminderDatetime); err != nil {
			s.logger.Error("failed to enqueue reminder dispatch",
				zap.String("reminder_id", reminder.ID),
				zap.Error(err))
		}
	}

	return reminder, nil
}

// MarkSent transitions a reminder from scheduled to sent and publishes a
// "sent" event. Marking an already-sent reminder succeeds without publishing
// anything, so delivery retries stay idempotent.
func (s *ReminderService) MarkSent(ctx context.Context, id, userID string) (*models.Reminder, error) {
	reminder, err := s.GetReminder(id, userID)
	if err != nil {
		return nil, err
	}
	if reminder.Sent {
		return reminder, nil
	}

	changed, err := s.reminderRepo.MarkSent(id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	if !changed {
		// Lost the race: re-read to tell an idempotent repeat from a
		// genuinely forbidden transition.
		current, err := s.GetReminder(id, userID)
		if err != nil {
			return nil, err
		}
		if current.Sent {
			return current, nil
		}
		return nil, ErrInvalidTransition
	}

	reminder.Sent = true
	s.publisher.Publish(ctx, reminder, models.ActionSent)
	return reminder, nil
}

// Cancel deactivates a reminder that has not been sent or completed yet and
// publishes a "cancelled" event.
func (s *ReminderService) Cancel(ctx context.Context, id, userID string) (*models.Reminder, error) {
	reminder, err := s.GetReminder(id, userID)
	if err != nil {
		return nil, err
	}

	changed, err := s.reminderRepo.Cancel(id)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel reminder: %w", err)
	}
	if !changed {
		return nil, ErrInvalidTransition
	}

	reminder.IsActive = false
	s.publisher.Publish(ctx, reminder, models.ActionCancelled)
	return reminder, nil
}

// Reschedule moves a scheduled reminder to a new future instant and publishes
// a "rescheduled" event. Sent, completed and cancelled reminders cannot move.
func (s *ReminderService) Reschedule(ctx context.Context, id, userID string, at time.Time) (*models.Reminder, error) {
	if !at.After(s.now()) {
		return nil, ErrPastDatetime
	}

	reminder, err := s.GetReminder(id, userID)
	if err != nil {
		return nil, err
	}

	changed, err := s.reminderRepo.UpdateTime(id, at.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule reminder: %w", err)
	}
	if !changed {
		return nil, ErrInvalidTransition
	}

	reminder.ReminderDatetime = at.UTC()
	s.publisher.Publish(ctx, reminder, models.ActionRescheduled)

	if s.dispatch != nil {
		if err := s.dispatch.Schedule(reminder.ID, reminder.ReminderDatetime); err != nil {
			s.logger.Error("failed to enqueue reminder dispatch",
				zap.String("reminder_id", reminder.ID),
				zap.Error(err))
		}
	}

	return reminder, nil
}

// Complete marks a reminder completed and publishes a "completed" event.
// Completing an already-completed reminder is a silent no-op.
func (s *ReminderService) Complete(ctx context.Context, id, userID string) (*models.Reminder, error) {
	reminder, err := s.GetReminder(id, userID)
	if err != nil {
		return nil, err
	}

	changed, err := s.reminderRepo.Complete(id)
	if err != nil {
		return nil, fmt.Errorf("failed to complete reminder: %w", err)
	}
	if changed {
		reminder.Sent = true
		reminder.IsCompleted = true
		s.publisher.Publish(ctx, reminder, models.ActionCompleted)
	}
	return reminder, nil
}

// Dispatch fires a due reminder from the delivery queue: it marks the
// reminder sent and publishes the event. Cancelled and completed reminders
// are skipped, and a repeat delivery of an already-sent reminder does
// nothing, so the queue handler can be retried safely.
func (s *ReminderService) Dispatch(ctx context.Context, id string) error {
	reminder, err := s.reminderRepo.FindByID(id, "Task", "User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The reminder was deleted with its task; nothing to deliver.
			return nil
		}
		return fmt.Errorf("failed to find reminder: %w", err)
	}
	if !reminder.IsActive || reminder.IsCompleted || reminder.Sent {
		return nil
	}

	changed, err := s.reminderRepo.MarkSent(id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	if changed {
		reminder.Sent = true
		s.publisher.Publish(ctx, reminder, models.ActionSent)
	}
	return nil
}

// Sweep advances every due active reminder to completed and publishes a
// "completed" event per transition. Cancelled reminders are left alone.
// It returns the number of reminders advanced. Running the sweep twice over
// the same window is harmless.
func (s *ReminderService) Sweep(ctx context.Context, limit int) (int, error) {
	due, err := s.reminderRepo.DuePending(s.now().UTC(), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	advanced := 0
	for i := range due {
		reminder := &due[i]
		changed, err := s.reminderRepo.Complete(reminder.ID)
		if err != nil {
			s.logger.Error("failed to complete due reminder",
				zap.String("reminder_id", reminder.ID),
				zap.Error(err))
			continue
		}
		if !changed {
			continue
		}
		reminder.Sent = true
		reminder.IsCompleted = true
		s.publisher.Publish(ctx, reminder, models.ActionCompleted)
		advanced++
	}

	return advanced, nil
}
