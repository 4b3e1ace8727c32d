package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents limit/offset pagination extracted from a request.
type PaginationParams struct {
	Limit  int
	Offset int
}

// GetPaginationParams extracts pagination parameters from request query params.
func GetPaginationParams(c echo.Context, defaultLimit int) PaginationParams {
	limit := defaultLimit
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return PaginationParams{Limit: limit, Offset: offset}
}
