// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"fruitmandi/internal/core/apperror"
)

// DateLayout is the wire format for business dates. The ledger works in
// whole days, so no time-of-day or zone is carried.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD business date.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return t, nil
}

// FormatDate renders a business date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// InvalidQuery builds the standard error for a malformed query parameter.
func InvalidQuery(param, value string) error {
	return apperror.NewValidation("invalid query parameter").
		WithDetail("param", param).
		WithDetail("value", value)
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID int64 `json:"id"`
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- List Response ---

// ListResponse wraps list results.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}
