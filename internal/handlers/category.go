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

// CategoryHandler coordinates category-related HTTP handlers.
type CategoryHandler struct {
	categoryService *services.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// CreateCategory creates a category for the current user.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateCategoryRequest struct {
		Name string `json:"name" binding:"required,max=100"`
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(userID, req.Name)
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryDTO(*category))
}

// ListCategories returns the current user's categories with task counts.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	categories, err := h.categoryService.ListCategories(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch categories")
		return
	}

	items := make([]dto.CategoryWithCountsDTO, len(categories))
	for i, category := range categories {
		items[i] = dto.CategoryWithCountsDTO{
			CategoryDTO:        dto.ToCategoryDTO(category.Category),
			TaskCount:          category.TaskCount,
			ActiveTaskCount:    category.ActiveTaskCount,
			CompletedTaskCount: category.CompletedTaskCount,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": items,
	})
}

// UpdateCategory renames a category.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateCategoryRequest struct {
		Name string `json:"name" binding:"required,max=100"`
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Param("id"), userID, req.Name)
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// DeleteCategory removes a category; its tasks become uncategorized.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.categoryService.DeleteCategory(c.Param("id"), userID); err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}

func respondCategoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrCategoryNameRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
