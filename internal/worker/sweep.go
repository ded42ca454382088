package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/taskmint/reminder-api/internal/services"
	"go.uber.org/zap"
)

// sweepBatchSize caps how many reminders a single sweep run advances.
const sweepBatchSize = 500

// Sweeper periodically advances overdue and already-sent reminders to
// completed, so they stop showing up as pending.
type Sweeper struct {
	cron            *cron.Cron
	reminderService *services.ReminderService
	logger          *zap.Logger
}

// NewSweeper creates a new Sweeper.
func NewSweeper(reminderService *services.ReminderService, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		cron:            cron.New(),
		reminderService: reminderService,
		logger:          logger,
	}
}

// Start schedules the sweep to run every minute and starts the cron loop.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc("* * * * *", s.run)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("reminder completion sweep started")
	return nil
}

// Stop halts the cron loop, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) run() {
	advanced, err := s.reminderService.Sweep(context.Background(), sweepBatchSize)
	if err != nil {
		s.logger.Error("reminder sweep failed", zap.Error(err))
		return
	}
	if advanced > 0 {
		s.logger.Info("reminder sweep advanced reminders", zap.Int("count", advanced))
	}
}
