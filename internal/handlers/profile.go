package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskmint/reminder-api/internal/dto"
	apierrors "github.com/taskmint/reminder-api/internal/errors"
	"github.com/taskmint/reminder-api/internal/middleware"
	"github.com/taskmint/reminder-api/internal/services"
)

// ProfileHandler coordinates profile-related HTTP handlers.
type ProfileHandler struct {
	profileService *services.ProfileService
	authService    *services.AuthService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *services.ProfileService, authService *services.AuthService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		authService:    authService,
	}
}

// GetProfile returns the current user's profile with task statistics.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondProfileError(c, err)
		return
	}

	profile, stats, err := h.profileService.GetProfile(userID)
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileResponse(*user, *profile, stats))
}

// UpdateProfile applies a partial update to the current user's profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProfileRequest struct {
		DisplayName             *string         `json:"display_name"`
		Timezone                *string         `json:"timezone"`
		ThemePreference         *string         `json:"theme_preference"`
		NotificationPreferences map[string]bool `json:"notification_preferences"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.profileService.UpdateProfile(userID, services.UpdateProfileInput{
		DisplayName:             req.DisplayName,
		Timezone:                req.Timezone,
		ThemePreference:         req.ThemePreference,
		NotificationPreferences: req.NotificationPreferences,
	})
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*profile))
}

func respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
