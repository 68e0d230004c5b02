package response

import (
	"net/http"
	"strconv"

	"bookhub/internal/models"
)

// ParsePagination reads page and page_size query parameters, falling back
// to defaults for missing or malformed values.
func ParsePagination(r *http.Request) models.PaginationParams {
	params := models.PaginationParams{}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			params.Page = page
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			params.PageSize = size
		}
	}

	params.Normalize()
	return params
}
