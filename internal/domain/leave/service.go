package leave

import (
	"context"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
)

type EntitlementService interface {
	GetOrCreate(ctx context.Context, userID string, year int) (Entitlement, error)
	Get(ctx context.Context, actor user.Actor, userID string, year int) (EntitlementResponse, error)
	SetQuotas(ctx context.Context, actor user.Actor, userID string, req SetQuotasRequest) (EntitlementResponse, error)
	// ProvisionYear ensures every candidate has an entitlement row for year.
	ProvisionYear(ctx context.Context, year int) (int, error)
}

type BalanceService interface {
	UsedDays(ctx context.Context, userID string, year int, category Category) (int, error)
	Remaining(ctx context.Context, userID string, year int) (Quotas, error)
	Balances(ctx context.Context, userID string, year int) (BalanceResponse, error)
}

type RequestService interface {
	Create(ctx context.Context, actor user.Actor, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, actor user.Actor, id string, comment string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string, comment string) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, actor user.Actor) ([]LeaveRequestResponse, error)
	GetMine(ctx context.Context, actor user.Actor, id string) (LeaveRequestResponse, error)
	List(ctx context.Context, actor user.Actor, query ListRequestsQuery) ([]LeaveRequestResponse, error)
	OpenDocument(ctx context.Context, actor user.Actor, id string) (DocumentFile, error)
}
