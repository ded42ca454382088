package services

import (
	"errors"
	"fmt"

	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrCategoryNotFound is returned when a category does not exist or
	// belongs to another user
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryNameRequired is returned when a category name is empty
	ErrCategoryNameRequired = errors.New("category name is required")
)

// CategoryWithCounts pairs a category with its task counters.
type CategoryWithCounts struct {
	models.Category
	TaskCount          int64 `json:"task_count"`
	ActiveTaskCount    int64 `json:"active_task_count"`
	CompletedTaskCount int64 `json:"completed_task_count"`
}

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, logger: logger}
}

// CreateCategory creates a category for the user.
func (s *CategoryService) CreateCategory(userID, name string) (*models.Category, error) {
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category := &models.Category{
		Name:   name,
		UserID: userID,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// GetCategory returns a category owned by the user.
func (s *CategoryService) GetCategory(id, userID string) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	if category.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// ListCategories returns the user's categories with task counts.
func (s *CategoryService) ListCategories(userID string) ([]CategoryWithCounts, error) {
	categories, err := s.categoryRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	out := make([]CategoryWithCounts, 0, len(categories))
	for _, category := range categories {
		total, active, completed, err := s.categoryRepo.TaskCounts(category.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks: %w", err)
		}
		out = append(out, CategoryWithCounts{
			Category:           category,
			TaskCount:          total,
			ActiveTaskCount:    active,
			CompletedTaskCount: completed,
		})
	}
	return out, nil
}

// UpdateCategory renames a category owned by the user.
func (s *CategoryService) UpdateCategory(id, userID, name string) (*models.Category, error) {
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category, err := s.GetCategory(id, userID)
	if err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category; its tasks survive without a category.
func (s *CategoryService) DeleteCategory(id, userID string) error {
	category, err := s.GetCategory(id, userID)
	if err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(category.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
