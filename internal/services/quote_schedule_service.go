package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrQuoteScheduleNotFound is returned when a user has no quote schedule
	ErrQuoteScheduleNotFound = errors.New("quote schedule not found")
	// ErrQuoteScheduleExists is returned when the user already has one
	ErrQuoteScheduleExists = errors.New("quote schedule already exists")
)

// UpdateQuoteScheduleInput carries the updatable quote schedule fields. Nil
// fields are left unchanged.
type UpdateQuoteScheduleInput struct {
	ScheduledTime *string
	IsActive      *bool
}

// QuoteScheduleService manages each user's daily quote slot.
type QuoteScheduleService struct {
	scheduleRepo repository.QuoteScheduleRepository
	logger       *zap.Logger
}

// NewQuoteScheduleService creates a new QuoteScheduleService
func NewQuoteScheduleService(scheduleRepo repository.QuoteScheduleRepository, logger *zap.Logger) *QuoteScheduleService {
	return &QuoteScheduleService{scheduleRepo: scheduleRepo, logger: logger}
}

// GetQuoteSchedule returns the user's quote schedule.
func (s *QuoteScheduleService) GetQuoteSchedule(userID string) (*models.QuoteSchedule, error) {
	schedule, err := s.scheduleRepo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteScheduleNotFound
		}
		return nil, fmt.Errorf("failed to find quote schedule: %w", err)
	}
	return schedule, nil
}

// CreateQuoteSchedule creates the user's quote schedule. A user has at most
// one; a second create is a conflict.
func (s *QuoteScheduleService) CreateQuoteSchedule(userID, scheduledTime string) (*models.QuoteSchedule, error) {
	if _, err := time.Parse(models.TimeOfDayLayout, scheduledTime); err != nil {
		return nil, ErrInvalidTime
	}

	if _, err := s.scheduleRepo.FindByUser(userID); err == nil {
		return nil, ErrQuoteScheduleExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find quote schedule: %w", err)
	}

	schedule := &models.QuoteSchedule{
		UserID:        userID,
		ScheduledTime: scheduledTime,
		IsActive:      true,
	}
	if err := s.scheduleRepo.Create(schedule); err != nil {
		return nil, fmt.Errorf("failed to create quote schedule: %w", err)
	}
	return schedule, nil
}

// UpdateQuoteSchedule changes the slot time or toggles delivery.
func (s *QuoteScheduleService) UpdateQuoteSchedule(userID string, input UpdateQuoteScheduleInput) (*models.QuoteSchedule, error) {
	schedule, err := s.GetQuoteSchedule(userID)
	if err != nil {
		return nil, err
	}

	if input.ScheduledTime != nil {
		if _, err := time.Parse(models.TimeOfDayLayout, *input.ScheduledTime); err != nil {
			return nil, ErrInvalidTime
		}
		schedule.ScheduledTime = *input.ScheduledTime
	}
	if input.IsActive != nil {
		schedule.IsActive = *input.IsActive
	}

	if err := s.scheduleRepo.Update(schedule); err != nil {
		return nil, fmt.Errorf("failed to update quote schedule: %w", err)
	}
	return schedule, nil
}

// DeleteQuoteSchedule removes the user's quote schedule.
func (s *QuoteScheduleService) DeleteQuoteSchedule(userID string) error {
	schedule, err := s.GetQuoteSchedule(userID)
	if err != nil {
		return err
	}

	if err := s.scheduleRepo.Delete(schedule.ID); err != nil {
		return fmt.Errorf("failed to delete quote schedule: %w", err)
	}
	return nil
}
