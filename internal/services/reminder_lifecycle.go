package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/publisher"
	"github.com/taskmint/reminder-api/internal/repository"
	"github.com/taskmint/reminder-api/internal/schedule"
	"github.com/taskmint/reminder-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DispatchScheduler enqueues a reminder for delivery at its fire time. The
// asynq-backed implementation lives in the worker package.
type DispatchScheduler interface {
	Schedule(reminderID string, fireAt time.Time) error
}

// ReminderLifecycle keeps a task's reminder set consistent with its
// schedule. It is the only component that creates reminder records: it
// computes the desired occurrences, diffs them against storage, and emits
// one event per resulting state transition.
type ReminderLifecycle struct {
	reminders repository.ReminderRepository
	publisher publisher.Publisher
	dispatch  DispatchScheduler
	logger    *zap.Logger
	now       func() time.Time
}

// NewReminderLifecycle creates a new ReminderLifecycle. dispatch may be nil
// when no delivery queue is configured.
func NewReminderLifecycle(reminders repository.ReminderRepository, pub publisher.Publisher, dispatch DispatchScheduler, logger *zap.Logger) *ReminderLifecycle {
	return &ReminderLifecycle{
		reminders: reminders,
		publisher: pub,
		dispatch:  dispatch,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the lifecycle clock (used for testing).
func (l *ReminderLifecycle) SetClock(now func() time.Time) {
	l.now = now
}

// Reconcile materializes the task's occurrences into reminder records.
// Already-existing records (exact timestamp match per task and snooze flag)
// are skipped, so calling Reconcile twice on an unchanged task is a no-op.
// Each created reminder is published with the given action after its write
// has committed. Individual failures are logged and skipped; the call only
// errors when nothing could be written at all.
func (l *ReminderLifecycle) Reconcile(ctx context.Context, task *models.Task, action models.ReminderAction) error {
	now := l.now().UTC()
	occurrences := schedule.ComputeOccurrences(task, now)

	var created []*models.Reminder
	var failed int
	var firstErr error

	for _, occ := range occurrences {
		// Occurrences already in the past never become new records;
		// a brand-new reminder's timestamp must be strictly in the future.
		if !occ.At.After(now) {
			continue
		}

		reminder, err := l.materialize(task, occ)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			l.logger.Error("failed to create reminder for occurrence",
				zap.String("task_id", task.ID),
				zap.Time("occurrence", occ.At),
				zap.String("kind", string(occ.Kind)),
				zap.Error(err))
			continue
		}
		if reminder == nil {
			// Duplicate of an existing record.
			continue
		}
		created = append(created, reminder)
	}

	if failed > 0 && len(created) == 0 {
		return fmt.Errorf("reconcile wrote no reminders for task %s: %w", task.ID, firstErr)
	}

	for _, reminder := range created {
		reminder.Task = *task
		reminder.User = task.User
		l.publisher.Publish(ctx, reminder, action)

		if l.dispatch != nil {
			if err := l.dispatch.Schedule(reminder.ID, reminder.ReminderDatetime); err != nil {
				l.logger.Error("failed to enqueue reminder dispatch",
					zap.String("reminder_id", reminder.ID),
					zap.Error(err))
			}
		}
	}

	return nil
}

// materialize creates the reminder for one occurrence inside a transaction
// that holds the task row lock, so the dedup read and the insert are atomic
// with respect to concurrent reconciles of the same task. Returns (nil, nil)
// when the occurrence already has a record.
func (l *ReminderLifecycle) materialize(task *models.Task, occ schedule.Occurrence) (*models.Reminder, error) {
	var out *models.Reminder

	err := l.reminders.Transaction(func(tx repository.ReminderRepository) error {
		if err := tx.LockTask(task.ID); err != nil {
			return fmt.Errorf("failed to lock task: %w", err)
		}

		find := tx.FindMain
		if occ.IsSnooze() {
			find = tx.FindSnooze
		}

		if _, err := find(task.ID, occ.At); err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed dedup lookup: %w", err)
		}

		reminder := &models.Reminder{
			UserID:           task.UserID,
			TaskID:           task.ID,
			Title:            occurrenceTitle(task, occ),
			ReminderDatetime: occ.At.UTC(),
			Sent:             false,
			IsActive:         true,
			IsSnooze:         occ.IsSnooze(),
			SnoozeMinutes:    occ.SnoozeMinutes,
			IsCompleted:      false,
		}

		if err := tx.Create(reminder); err != nil {
			return fmt.Errorf("failed to create reminder: %w", err)
		}

		out = reminder
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// HandleReschedule reacts to a change of the task's due date or time: every
// future, unsent reminder is removed and the schedule is rebuilt from
// scratch. The rebuilt reminders are published with action "rescheduled".
func (l *ReminderLifecycle) HandleReschedule(ctx context.Context, task *models.Task) error {
	now := l.now().UTC()

	if err := l.reminders.DeleteFutureUnsent(task.ID, now); err != nil {
		return fmt.Errorf("failed to clear future reminders: %w", err)
	}

	return l.Reconcile(ctx, task, models.ActionRescheduled)
}

// HandleDelete publishes a cancellation for every active, unsent reminder of
// the task. The actual records go away with the task's cascade delete; this
// only informs the downstream dispatcher.
func (l *ReminderLifecycle) HandleDelete(ctx context.Context, task *models.Task) error {
	reminders, err := l.reminders.ListActiveUnsent(task.ID)
	if err != nil {
		return fmt.Errorf("failed to list reminders for cancellation: %w", err)
	}

	for i := range reminders {
		l.publisher.Publish(ctx, &reminders[i], models.ActionCancelled)
	}

	return nil
}

// HandleTaskCompleted closes out every reminder of a completed task and
// publishes a completion event per reminder.
func (l *ReminderLifecycle) HandleTaskCompleted(ctx context.Context, task *models.Task) error {
	reminders, err := l.reminders.CompleteAllForTask(task.ID)
	if err != nil {
		return fmt.Errorf("failed to complete reminders: %w", err)
	}

	for i := range reminders {
		l.publisher.Publish(ctx, &reminders[i], models.ActionCompleted)
	}

	return nil
}

// occurrenceTitle derives the human-readable, kind-prefixed reminder title.
func occurrenceTitle(task *models.Task, occ schedule.Occurrence) string {
	switch occ.Kind {
	case schedule.KindDaily:
		return "Daily Reminder: " + task.Title
	case schedule.KindRecurring:
		return "Recurring Reminder: " + task.Title
	case schedule.KindSnooze:
		return fmt.Sprintf("Snooze %s: %s", utils.FormatMinutes(occ.SnoozeMinutes), task.Title)
	default:
		return "Reminder: " + task.Title
	}
}
