package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskmint/reminder-api/internal/constants"
	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken            = errors.New("email already registered")
	ErrEmailRequired         = errors.New("email is required")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrPasswordTooShort      = errors.New("password too short")
	ErrUserNotFound          = errors.New("user not found")
	ErrFailedToHashPassword  = errors.New("failed to hash password")
	ErrFailedToCreateUser    = errors.New("failed to create user")
	ErrFailedToCreateProfile = errors.New("failed to create profile")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email    string
	Username string
	Password string
}

// Signup creates a new user along with their profile.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	profile := &models.Profile{
		DisplayName: username,
	}

	if err := s.userRepo.CreateWithProfile(user, profile); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateUser):
			return nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateProfile):
			return nil, ErrFailedToCreateProfile
		default:
			return nil, fmt.Errorf("failed to complete signup: %w", err)
		}
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
