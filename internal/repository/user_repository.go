package repository

import (
	"errors"
	"fmt"

	"github.com/taskmint/reminder-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the signup transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateProfile is returned when creating a profile fails inside the signup transaction.
	ErrCreateProfile = errors.New("user repository: create profile failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateWithProfile creates a user and their profile atomically.
func (r *GormUserRepository) CreateWithProfile(user *models.User, profile *models.Profile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		profile.UserID = user.ID

		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProfile, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindProfile finds the profile belonging to a user
func (r *GormUserRepository) FindProfile(userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile updates a profile
func (r *GormUserRepository) UpdateProfile(profile *models.Profile) error {
	return r.db.Save(profile).Error
}
