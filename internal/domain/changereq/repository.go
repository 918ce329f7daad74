package changereq

import (
	"context"
	"time"
)

// Review carries the terminal transition written by an approval or rejection.
type Review struct {
	Status     Status
	ReviewedBy string
	ReviewedAt time.Time
	Comment    string
}

// Repository defines persistence operations for change requests.
type Repository interface {
	// Create inserts a pending request and assigns its ID.
	Create(ctx context.Context, cr *ChangeRequest) error

	// GetByID retrieves a request. Returns apperror.NewNotFound when absent.
	GetByID(ctx context.Context, id int64) (*ChangeRequest, error)

	// GetByIDForUpdate retrieves a request with a row lock, so two
	// concurrent reviews of the same request serialize and the loser sees
	// the terminal status.
	GetByIDForUpdate(ctx context.Context, id int64) (*ChangeRequest, error)

	// SetReviewed writes the terminal transition for a request.
	SetReviewed(ctx context.Context, id int64, review Review) error

	// ListByStatus returns requests in a status, newest first.
	ListByStatus(ctx context.Context, status Status) ([]*ChangeRequest, error)

	// ListByRequester returns a user's requests, newest first.
	ListByRequester(ctx context.Context, requestedBy string, limit int) ([]*ChangeRequest, error)

	// CountByStatus tallies requests per status.
	CountByStatus(ctx context.Context) (Counts, error)
}
