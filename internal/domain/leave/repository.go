package leave

import (
	"context"
)

// EntitlementRepository - interface for entitlements table
type EntitlementRepository interface {
	// EnsureExists inserts a row with the given quotas unless one already
	// exists for (userID, year).
	EnsureExists(ctx context.Context, userID string, year int, quotas Quotas) error
	GetByUserAndYear(ctx context.Context, userID string, year int) (Entitlement, error)
	// GetByUserAndYearForUpdate locks the row until the surrounding transaction ends.
	GetByUserAndYearForUpdate(ctx context.Context, userID string, year int) (Entitlement, error)
	UpdateQuotas(ctx context.Context, id string, quotas Quotas) (Entitlement, error)
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	ListByUser(ctx context.Context, userID string) ([]LeaveRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]LeaveRequest, error)
	// SumApprovedDays totals working days of approved requests starting in year.
	SumApprovedDays(ctx context.Context, userID string, year int) (Quotas, error)
	// Decide moves a pending request to target. It returns ErrInvalidState when
	// the request is no longer pending.
	Decide(ctx context.Context, id string, target Status, decidedBy string, comment string) (LeaveRequest, error)
}
