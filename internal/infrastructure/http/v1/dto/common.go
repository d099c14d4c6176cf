// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain"
)

// PaginationRequest contains limit/offset query parameters.
type PaginationRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Page converts the request into domain pagination.
func (p PaginationRequest) Page() domain.Page {
	return domain.Page{Limit: p.Limit, Offset: p.Offset}.Normalize()
}

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult converts a domain list result.
func FromListResult[T, R any](res domain.ListResult[T], conv func(T) R) ListResponse[R] {
	items := make([]R, len(res.Items))
	for i, v := range res.Items {
		items[i] = conv(v)
	}
	return ListResponse[R]{
		Items:      items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	}
}

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ParseDate parses a query date, either YYYY-MM-DD (midnight in loc) or
// RFC 3339. Empty input yields nil.
func ParseDate(field, raw string, loc *time.Location) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", raw, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid date, expected YYYY-MM-DD or RFC 3339").
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return &t, nil
}
