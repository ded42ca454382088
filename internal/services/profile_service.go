package services

import (
	"errors"
	"fmt"

	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/repository"
	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when a user has no profile record
var ErrProfileNotFound = errors.New("profile not found")

// ProfileService handles user profile reads and updates together with the
// derived task completion statistics.
type ProfileService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
}

// NewProfileService creates a new ProfileService.
func NewProfileService(userRepo repository.UserRepository, taskRepo repository.TaskRepository) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		taskRepo: taskRepo,
	}
}

// GetProfile returns the user's profile and completion stats.
func (s *ProfileService) GetProfile(userID string) (*models.Profile, models.CompletionStats, error) {
	profile, err := s.userRepo.FindProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.CompletionStats{}, ErrProfileNotFound
		}
		return nil, models.CompletionStats{}, fmt.Errorf("failed to find profile: %w", err)
	}

	stats, err := s.taskRepo.CompletionStats(userID)
	if err != nil {
		return nil, models.CompletionStats{}, fmt.Errorf("failed to compute stats: %w", err)
	}

	return profile, stats, nil
}

// UpdateProfileInput contains profile changes. Nil pointers leave the
// corresponding field unchanged.
type UpdateProfileInput struct {
	DisplayName             *string
	Timezone                *string
	ThemePreference         *string
	NotificationPreferences map[string]bool
}

// UpdateProfile applies the changes and returns the updated profile.
func (s *ProfileService) UpdateProfile(userID string, input UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.userRepo.FindProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if input.DisplayName != nil {
		profile.DisplayName = *input.DisplayName
	}
	if input.Timezone != nil {
		profile.Timezone = *input.Timezone
	}
	if input.ThemePreference != nil {
		profile.ThemePreference = *input.ThemePreference
	}
	if input.NotificationPreferences != nil {
		if profile.NotificationPreferences == nil {
			profile.NotificationPreferences = models.StringBoolMap{}
		}
		for key, value := range input.NotificationPreferences {
			profile.NotificationPreferences[key] = value
		}
	}

	if err := s.userRepo.UpdateProfile(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}
