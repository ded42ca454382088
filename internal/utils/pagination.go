package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskmint/reminder-api/internal/constants"
)

// PaginationParams is the page window requested through ?page= and ?limit=.
type PaginationParams struct {
	Page  int
	Limit int
}

// GetPaginationParams reads the page window from the query string. Missing,
// unparseable or out-of-range values fall back to the defaults.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{Page: page, Limit: limit}
}
