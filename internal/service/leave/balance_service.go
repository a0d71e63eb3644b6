package leave

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"golang.org/x/sync/errgroup"
)

type BalanceService struct {
	entitlements leave.EntitlementService
	leave.LeaveRequestRepository
}

func NewBalanceService(entitlements leave.EntitlementService, leaveRequestRepository leave.LeaveRequestRepository) *BalanceService {
	return &BalanceService{
		entitlements:           entitlements,
		LeaveRequestRepository: leaveRequestRepository,
	}
}

// UsedDays sums the working days of approved requests starting in year.
func (s *BalanceService) UsedDays(ctx context.Context, userID string, year int, category leave.Category) (int, error) {
	used, err := s.LeaveRequestRepository.SumApprovedDays(ctx, userID, year)
	if err != nil {
		return 0, fmt.Errorf("failed to sum approved days: %w", err)
	}
	return used.Of(category), nil
}

// Remaining returns the per-category balance floored at zero.
func (s *BalanceService) Remaining(ctx context.Context, userID string, year int) (leave.Quotas, error) {
	balance, err := s.Balances(ctx, userID, year)
	if err != nil {
		return leave.Quotas{}, err
	}
	return balance.Remaining, nil
}

func (s *BalanceService) Balances(ctx context.Context, userID string, year int) (leave.BalanceResponse, error) {
	var (
		ent  leave.Entitlement
		used leave.Quotas
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		ent, err = s.entitlements.GetOrCreate(gCtx, userID, year)
		return err
	})

	g.Go(func() error {
		var err error
		used, err = s.LeaveRequestRepository.SumApprovedDays(gCtx, userID, year)
		if err != nil {
			return fmt.Errorf("failed to sum approved days: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return leave.BalanceResponse{}, err
	}

	return leave.BalanceResponse{
		Year:        year,
		Entitlement: leave.NewEntitlementResponse(ent),
		Used:        used,
		Remaining:   flooredRemaining(ent.Quotas, used),
	}, nil
}

func flooredRemaining(quotas, used leave.Quotas) leave.Quotas {
	var remaining leave.Quotas
	for _, c := range leave.Categories() {
		remaining.Set(c, max(0, quotas.Of(c)-used.Of(c)))
	}
	return remaining
}
