package changereq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/core/appctx"
	"fruitmandi/internal/core/tx"
	"fruitmandi/internal/domain/audit"
	"fruitmandi/internal/domain/trade"
	"fruitmandi/pkg/logger"
)

// Service runs the change-request state machine.
type Service struct {
	repo      Repository
	sales     trade.Repository
	txManager tx.Manager
	recorder  audit.Recorder
	now       func() time.Time
}

// NewService creates a new change-request service.
func NewService(
	repo Repository,
	sales trade.Repository,
	txManager tx.Manager,
	recorder audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		sales:     sales,
		txManager: txManager,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Submit captures a proposed edit to a sale. The sale row is not touched;
// the current snapshot is taken verbatim at submission time. Any
// authenticated user may submit.
func (s *Service) Submit(ctx context.Context, saleID int64, requested trade.SaleDraft, note string) (*ChangeRequest, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("submitting a change request requires an identity")
	}
	if err := requested.Validate(ctx); err != nil {
		return nil, err
	}

	sale, err := s.sales.GetSaleByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	cr := &ChangeRequest{
		SaleID:        saleID,
		RequestedBy:   user.UserID,
		RequesterName: user.DisplayName,
		CurrentData:   trade.DraftOf(sale),
		RequestedData: requested,
		Status:        StatusPending,
		Note:          strings.TrimSpace(note),
		RequestedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, cr); err != nil {
		return nil, fmt.Errorf("create change request: %w", err)
	}

	logger.Info(ctx, "change request submitted",
		"request_id", cr.ID,
		"sale_id", saleID,
		"requested_by", cr.RequestedBy,
	)
	return cr, nil
}

// Approve applies a pending request to its sale and freezes the request.
//
// The whole read-check-write sequence is one transaction with the request
// row locked, so two simultaneous approvals cannot both succeed. Derived
// totals are recomputed from the requested boxes, price and deposit; the
// snapshot's stored totals are never trusted.
//
// Approval does not re-run FIFO stock adjustment: editing historical boxes
// or fruit leaves inventory as it was. Known limitation, kept as such.
func (s *Service) Approve(ctx context.Context, requestID int64, comment string) error {
	reviewer, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}

	comment = strings.TrimSpace(comment)
	if comment == "" {
		comment = "Approved"
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cr, err := s.repo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if cr.Status != StatusPending {
			return apperror.NewInvalidStateTransition("change request", requestID, string(cr.Status))
		}

		sale, err := s.sales.GetSaleByIDForUpdate(ctx, cr.SaleID)
		if err != nil {
			return err
		}

		before := trade.DraftOf(sale)
		sale.Apply(cr.RequestedData)
		if err := s.sales.UpdateSale(ctx, sale); err != nil {
			return fmt.Errorf("apply sale update: %w", err)
		}

		if err := s.repo.SetReviewed(ctx, requestID, Review{
			Status:     StatusApproved,
			ReviewedBy: reviewer.UserID,
			ReviewedAt: s.now(),
			Comment:    comment,
		}); err != nil {
			return fmt.Errorf("mark approved: %w", err)
		}

		changes, err := audit.Diff(before, cr.RequestedData)
		if err != nil {
			return fmt.Errorf("encode audit diff: %w", err)
		}
		return s.recorder.Record(ctx, &audit.Entry{
			Entity:   "sale",
			EntityID: cr.SaleID,
			Action:   audit.ActionApprove,
			Actor:    reviewer.UserID,
			Changes:  changes,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "change request approved",
		"request_id", requestID,
		"reviewed_by", reviewer.UserID,
	)
	return nil
}

// Reject freezes a pending request without touching the sale.
// A non-empty reason is required.
func (s *Service) Reject(ctx context.Context, requestID int64, reason string) error {
	reviewer, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.NewValidation("rejection reason is required").
			WithDetail("field", "reason")
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cr, err := s.repo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if cr.Status != StatusPending {
			return apperror.NewInvalidStateTransition("change request", requestID, string(cr.Status))
		}

		if err := s.repo.SetReviewed(ctx, requestID, Review{
			Status:     StatusRejected,
			ReviewedBy: reviewer.UserID,
			ReviewedAt: s.now(),
			Comment:    reason,
		}); err != nil {
			return fmt.Errorf("mark rejected: %w", err)
		}

		return s.recorder.Record(ctx, &audit.Entry{
			Entity:   "change_request",
			EntityID: requestID,
			Action:   audit.ActionReject,
			Actor:    reviewer.UserID,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "change request rejected",
		"request_id", requestID,
		"reviewed_by", reviewer.UserID,
	)
	return nil
}

// GetByID retrieves a change request.
func (s *Service) GetByID(ctx context.Context, id int64) (*ChangeRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByStatus returns requests in a status, newest first. Admin only:
// the review queue exposes other users' proposals.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]*ChangeRequest, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, status)
}

// ListMine returns the calling user's requests, newest first.
func (s *Service) ListMine(ctx context.Context, limit int) ([]*ChangeRequest, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("listing change requests requires an identity")
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListByRequester(ctx, user.UserID, limit)
}

// CountByStatus tallies requests per status.
func (s *Service) CountByStatus(ctx context.Context) (Counts, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *Service) requireAdmin(ctx context.Context) (*appctx.UserContext, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("reviewing change requests requires an identity")
	}
	if !user.Admin {
		return nil, apperror.NewForbidden("reviewing change requests requires the admin role")
	}
	return user, nil
}
