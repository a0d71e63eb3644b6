package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/leave-backend-go/internal/service/file"
)

type RequestService struct {
	tx database.Transactor
	leave.EntitlementRepository
	leave.LeaveRequestRepository
	fileService file.FileService
	audit       audit.Recorder
}

func NewRequestService(tx database.Transactor, entitlementRepository leave.EntitlementRepository, leaveRequestRepository leave.LeaveRequestRepository, fileService file.FileService, recorder audit.Recorder) *RequestService {
	return &RequestService{
		tx:                     tx,
		EntitlementRepository:  entitlementRepository,
		LeaveRequestRepository: leaveRequestRepository,
		fileService:            fileService,
		audit:                  recorder,
	}
}

// Create validates a submission in a fixed order (category, range, document,
// balance) and stores it as pending.
func (s *RequestService) Create(ctx context.Context, actor user.Actor, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	category := leave.ParseCategory(req.Category)
	if !category.IsValid() {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidCategory
	}

	startDate, _ := validator.IsValidDate(req.StartDate)
	endDate, _ := validator.IsValidDate(req.EndDate)
	workingDays, err := leave.CountWorkingDays(startDate, endDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if workingDays <= 0 {
		return leave.LeaveRequestResponse{}, leave.ErrZeroDuration
	}

	if leave.RequiresDocument(category, workingDays) && req.Document == nil {
		return leave.LeaveRequestResponse{}, &leave.DocumentRequiredError{Category: category, WorkingDays: workingDays}
	}

	var documentRef *string
	if req.Document != nil {
		key, err := s.fileService.UploadLeaveDocument(ctx, actor.ID, *req.Document)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		documentRef = &key
	}

	request := leave.LeaveRequest{
		UserID:      actor.ID,
		Category:    category,
		StartDate:   startDate,
		EndDate:     endDate,
		WorkingDays: workingDays,
		DocumentRef: documentRef,
		Status:      leave.StatusPending,
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		request.Reason = &reason
	}

	var created leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		year := startDate.Year()
		if err := s.EntitlementRepository.EnsureExists(txCtx, actor.ID, year, leave.DefaultQuotas); err != nil {
			return fmt.Errorf("failed to ensure entitlement: %w", err)
		}

		// Serializes concurrent submissions for the same user and year.
		ent, err := s.EntitlementRepository.GetByUserAndYearForUpdate(txCtx, actor.ID, year)
		if err != nil {
			return fmt.Errorf("failed to lock entitlement: %w", err)
		}

		used, err := s.LeaveRequestRepository.SumApprovedDays(txCtx, actor.ID, year)
		if err != nil {
			return fmt.Errorf("failed to sum approved days: %w", err)
		}

		remaining := ent.Quotas.Of(category) - used.Of(category)
		if remaining < workingDays {
			return &leave.InsufficientBalanceError{Category: category, Remaining: remaining}
		}

		created, err = s.LeaveRequestRepository.Create(txCtx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		if documentRef != nil {
			if delErr := s.fileService.DeleteFile(context.WithoutCancel(ctx), *documentRef); delErr != nil {
				slog.Warn("failed to delete orphaned leave document", "key", *documentRef, "error", delErr)
			}
		}
		return leave.LeaveRequestResponse{}, err
	}

	s.audit.Record(ctx, actor.ID, audit.ActionRequestCreated, audit.EntityLeaveRequest, created.ID,
		fmt.Sprintf("Category %s, %d day(s)", created.Category, created.WorkingDays))

	return leave.NewLeaveRequestResponse(created), nil
}

func (s *RequestService) Approve(ctx context.Context, actor user.Actor, id string, comment string) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, actor, id, comment, leave.StatusApproved, audit.ActionRequestApproved)
}

func (s *RequestService) Reject(ctx context.Context, actor user.Actor, id string, comment string) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, actor, id, comment, leave.StatusRejected, audit.ActionRequestRejected)
}

func (s *RequestService) decide(ctx context.Context, actor user.Actor, id string, comment string, target leave.Status, action audit.Action) (leave.LeaveRequestResponse, error) {
	if !actor.IsAdmin() {
		return leave.LeaveRequestResponse{}, user.ErrAdminPrivilegeRequired
	}

	comment = strings.TrimSpace(comment)
	if comment == "" {
		return leave.LeaveRequestResponse{}, leave.ErrCommentRequired
	}

	request, err := s.getRequest(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !request.CanTransitionTo(target) {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidState
	}

	// The repository update is conditional on status, so a concurrent decision
	// that won the race surfaces here as ErrInvalidState.
	decided, err := s.LeaveRequestRepository.Decide(ctx, request.ID, target, actor.ID, comment)
	if err != nil {
		if errors.Is(err, leave.ErrInvalidState) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	decided.CandidateName = request.CandidateName
	decided.CandidateEmail = request.CandidateEmail

	s.audit.Record(ctx, actor.ID, action, audit.EntityLeaveRequest, decided.ID, comment)

	return leave.NewLeaveRequestResponse(decided), nil
}

func (s *RequestService) ListMine(ctx context.Context, actor user.Actor) ([]leave.LeaveRequestResponse, error) {
	requests, err := s.LeaveRequestRepository.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return leave.NewLeaveRequestResponses(requests), nil
}

// GetMine returns one of the actor's own requests. Requests owned by someone
// else are reported as not found.
func (s *RequestService) GetMine(ctx context.Context, actor user.Actor, id string) (leave.LeaveRequestResponse, error) {
	request, err := s.getRequest(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.UserID != actor.ID {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	return leave.NewLeaveRequestResponse(request), nil
}

func (s *RequestService) List(ctx context.Context, actor user.Actor, query leave.ListRequestsQuery) ([]leave.LeaveRequestResponse, error) {
	if !actor.IsAdmin() {
		return nil, user.ErrAdminPrivilegeRequired
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	requests, err := s.LeaveRequestRepository.List(ctx, query.Filter())
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return leave.NewLeaveRequestResponses(requests), nil
}

// OpenDocument opens the supporting document of a request. Admins may open any
// document; candidates only their own.
func (s *RequestService) OpenDocument(ctx context.Context, actor user.Actor, id string) (leave.DocumentFile, error) {
	request, err := s.getRequest(ctx, id)
	if err != nil {
		return leave.DocumentFile{}, err
	}
	if !actor.IsAdmin() && request.UserID != actor.ID {
		return leave.DocumentFile{}, leave.ErrLeaveRequestNotFound
	}
	if !request.HasDocument() {
		return leave.DocumentFile{}, leave.ErrDocumentNotFound
	}

	return s.fileService.OpenLeaveDocument(ctx, *request.DocumentRef)
}

func (s *RequestService) getRequest(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	request, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequest{}, err
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return request, nil
}

