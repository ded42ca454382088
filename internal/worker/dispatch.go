package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/taskmint/reminder-api/internal/services"
	"go.uber.org/zap"
)

// TypeReminderDispatch identifies queued reminder delivery tasks.
const TypeReminderDispatch = "reminder:dispatch"

// DispatchPayload is the queue payload for a reminder delivery.
type DispatchPayload struct {
	ReminderID string `json:"reminder_id"`
}

// NewDispatchTask builds the asynq task for a reminder, scheduled to run at
// the reminder's fire time.
func NewDispatchTask(reminderID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(DispatchPayload{ReminderID: reminderID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReminderDispatch, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqScheduler enqueues reminder dispatches on an asynq queue.
type AsynqScheduler struct {
	client *asynq.Client
}

// NewAsynqScheduler creates a new AsynqScheduler.
func NewAsynqScheduler(client *asynq.Client) *AsynqScheduler {
	return &AsynqScheduler{client: client}
}

// Schedule enqueues a delivery for the reminder at its fire time.
func (s *AsynqScheduler) Schedule(reminderID string, fireAt time.Time) error {
	task, opts, err := NewDispatchTask(reminderID, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build dispatch task: %w", err)
	}
	if _, err := s.client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue dispatch task: %w", err)
	}
	return nil
}

// DispatchServer consumes the delivery queue and fires due reminders.
type DispatchServer struct {
	server          *asynq.Server
	reminderService *services.ReminderService
	logger          *zap.Logger
}

// NewDispatchServer creates a new DispatchServer on the given redis
// connection.
func NewDispatchServer(redisOpts asynq.RedisClientOpt, reminderService *services.ReminderService, logger *zap.Logger) *DispatchServer {
	server := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
	})

	return &DispatchServer{
		server:          server,
		reminderService: reminderService,
		logger:          logger,
	}
}

// Start runs the worker in the background.
func (s *DispatchServer) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderDispatch, s.handleDispatch)

	if err := s.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start dispatch worker: %w", err)
	}
	s.logger.Info("reminder dispatch worker started")
	return nil
}

// Shutdown stops the worker and waits for in-flight tasks.
func (s *DispatchServer) Shutdown() {
	s.server.Shutdown()
}

func (s *DispatchServer) handleDispatch(ctx context.Context, task *asynq.Task) error {
	var payload DispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		s.logger.Error("invalid dispatch payload", zap.Error(err))
		// A malformed payload never becomes valid; do not retry.
		return fmt.Errorf("invalid dispatch payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := s.reminderService.Dispatch(ctx, payload.ReminderID); err != nil {
		s.logger.Error("failed to dispatch reminder",
			zap.String("reminder_id", payload.ReminderID),
			zap.Error(err))
		return err
	}

	return nil
}
