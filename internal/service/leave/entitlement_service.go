package leave

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
)

type EntitlementService struct {
	tx database.Transactor
	leave.EntitlementRepository
	user.UserRepository
	audit audit.Recorder
}

func NewEntitlementService(tx database.Transactor, entitlementRepository leave.EntitlementRepository, userRepository user.UserRepository, recorder audit.Recorder) *EntitlementService {
	return &EntitlementService{
		tx:                    tx,
		EntitlementRepository: entitlementRepository,
		UserRepository:        userRepository,
		audit:                 recorder,
	}
}

// GetOrCreate returns the (userID, year) entitlement, inserting the default
// quotas first when none exists.
func (s *EntitlementService) GetOrCreate(ctx context.Context, userID string, year int) (leave.Entitlement, error) {
	if err := s.EntitlementRepository.EnsureExists(ctx, userID, year, leave.DefaultQuotas); err != nil {
		return leave.Entitlement{}, fmt.Errorf("failed to ensure entitlement: %w", err)
	}

	ent, err := s.EntitlementRepository.GetByUserAndYear(ctx, userID, year)
	if err != nil {
		return leave.Entitlement{}, fmt.Errorf("failed to get entitlement: %w", err)
	}

	return ent, nil
}

func (s *EntitlementService) Get(ctx context.Context, actor user.Actor, userID string, year int) (leave.EntitlementResponse, error) {
	if !actor.IsAdmin() {
		return leave.EntitlementResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := s.checkUser(ctx, userID); err != nil {
		return leave.EntitlementResponse{}, err
	}

	ent, err := s.GetOrCreate(ctx, userID, year)
	if err != nil {
		return leave.EntitlementResponse{}, err
	}

	return leave.NewEntitlementResponse(ent), nil
}

// SetQuotas overwrites the categories present in req and keeps the others.
func (s *EntitlementService) SetQuotas(ctx context.Context, actor user.Actor, userID string, req leave.SetQuotasRequest) (leave.EntitlementResponse, error) {
	if !actor.IsAdmin() {
		return leave.EntitlementResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return leave.EntitlementResponse{}, err
	}
	if err := s.checkUser(ctx, userID); err != nil {
		return leave.EntitlementResponse{}, err
	}

	var updated leave.Entitlement
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.EntitlementRepository.EnsureExists(txCtx, userID, req.Year, leave.DefaultQuotas); err != nil {
			return fmt.Errorf("failed to ensure entitlement: %w", err)
		}

		current, err := s.EntitlementRepository.GetByUserAndYearForUpdate(txCtx, userID, req.Year)
		if err != nil {
			return fmt.Errorf("failed to lock entitlement: %w", err)
		}

		updated, err = s.EntitlementRepository.UpdateQuotas(txCtx, current.ID, req.Apply(current.Quotas))
		if err != nil {
			return fmt.Errorf("failed to update entitlement: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.EntitlementResponse{}, err
	}

	note, _ := json.Marshal(req)
	s.audit.Record(ctx, actor.ID, audit.ActionEntitlementChanged, audit.EntityEntitlement, updated.ID, string(note))

	return leave.NewEntitlementResponse(updated), nil
}

// ProvisionYear ensures every candidate has an entitlement for year and
// returns how many candidates were processed.
func (s *EntitlementService) ProvisionYear(ctx context.Context, year int) (int, error) {
	candidates, err := s.UserRepository.ListByRole(ctx, user.RoleCandidate)
	if err != nil {
		return 0, fmt.Errorf("failed to list candidates: %w", err)
	}

	provisioned := 0
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return provisioned, err
		}
		if err := s.EntitlementRepository.EnsureExists(ctx, c.ID, year, leave.DefaultQuotas); err != nil {
			slog.Error("failed to provision entitlement", "user_id", c.ID, "year", year, "error", err)
			continue
		}
		provisioned++
	}

	return provisioned, nil
}

func (s *EntitlementService) checkUser(ctx context.Context, userID string) error {
	if !validator.IsValidUUID(userID) {
		return user.ErrUserNotFound
	}
	if _, err := s.UserRepository.GetByID(ctx, userID); err != nil {
		return err
	}
	return nil
}
