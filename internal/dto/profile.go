package dto

import (
	"github.com/taskmint/reminder-api/internal/models"
)

// ProfileDTO represents a user profile in API responses
type ProfileDTO struct {
	DisplayName             string          `json:"display_name"`
	Timezone                string          `json:"timezone"`
	ThemePreference         string          `json:"theme_preference"`
	NotificationPreferences map[string]bool `json:"notification_preferences"`
}

// ProfileResponse pairs the profile with derived task statistics
type ProfileResponse struct {
	User           UserDTO    `json:"user"`
	Profile        ProfileDTO `json:"profile"`
	TotalTasks     int64      `json:"total_tasks"`
	CompletedTasks int64      `json:"completed_tasks"`
	ActiveTasks    int64      `json:"active_tasks"`
	CompletionRate int        `json:"completion_rate"`
}

// ToProfileDTO converts a Profile model to ProfileDTO
func ToProfileDTO(profile models.Profile) ProfileDTO {
	return ProfileDTO{
		DisplayName:             profile.DisplayName,
		Timezone:                profile.Timezone,
		ThemePreference:         profile.ThemePreference,
		NotificationPreferences: profile.NotificationPreferences,
	}
}

// ToProfileResponse builds the full profile payload
func ToProfileResponse(user models.User, profile models.Profile, stats models.CompletionStats) ProfileResponse {
	return ProfileResponse{
		User:           ToUserDTO(user),
		Profile:        ToProfileDTO(profile),
		TotalTasks:     stats.Total,
		CompletedTasks: stats.Completed,
		ActiveTasks:    stats.Active,
		CompletionRate: stats.CompletionRate(),
	}
}
