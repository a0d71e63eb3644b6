package invitation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/config"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/invitation"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type InvitationServiceImpl struct {
	invitation.InviteRepository
	user.UserRepository
	emailService email.EmailService
	audit        audit.Recorder
	cfg          config.InvitationConfig
	now          func() time.Time
	dispatch     func(fn func())
}

func NewInvitationService(inviteRepository invitation.InviteRepository, userRepository user.UserRepository, emailService email.EmailService, recorder audit.Recorder, cfg config.InvitationConfig) invitation.InvitationService {
	return &InvitationServiceImpl{
		InviteRepository: inviteRepository,
		UserRepository:   userRepository,
		emailService:     emailService,
		audit:            recorder,
		cfg:              cfg,
		now:              time.Now,
		dispatch:         func(fn func()) { go fn() },
	}
}

// Create implements invitation.InvitationService.
func (s *InvitationServiceImpl) Create(ctx context.Context, actor user.Actor, req invitation.CreateInviteRequest) (invitation.InviteResponse, error) {
	if !actor.IsAdmin() {
		return invitation.InviteResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return invitation.InviteResponse{}, err
	}

	emailAddr := validator.NormalizeEmail(req.Email)
	exists, err := s.UserRepository.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return invitation.InviteResponse{}, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return invitation.InviteResponse{}, invitation.ErrEmailAlreadyRegistered
	}

	adminID := actor.ID
	created, err := s.InviteRepository.Create(ctx, invitation.Invite{
		Email:            emailAddr,
		Token:            uuid.New().String(),
		ExpiresAt:        s.now().Add(s.cfg.Expiry),
		CreatedByAdminID: &adminID,
	})
	if err != nil {
		return invitation.InviteResponse{}, fmt.Errorf("failed to create invite: %w", err)
	}

	link := s.link(created.Token)
	s.sendEmail(created, link)
	s.audit.Record(ctx, actor.ID, audit.ActionInviteSent, audit.EntityInvite, created.ID, "Email: "+created.Email)

	return invitation.NewInviteResponse(created, link, s.now()), nil
}

// List implements invitation.InvitationService.
func (s *InvitationServiceImpl) List(ctx context.Context, actor user.Actor) ([]invitation.InviteResponse, error) {
	if !actor.IsAdmin() {
		return nil, user.ErrAdminPrivilegeRequired
	}

	invites, err := s.InviteRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}

	now := s.now()
	responses := make([]invitation.InviteResponse, 0, len(invites))
	for _, inv := range invites {
		responses = append(responses, invitation.NewInviteResponse(inv, s.link(inv.Token), now))
	}
	return responses, nil
}

// Resend implements invitation.InvitationService.
func (s *InvitationServiceImpl) Resend(ctx context.Context, actor user.Actor, id string) error {
	if !actor.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}

	inv, err := s.getInvite(ctx, id)
	if err != nil {
		return err
	}
	if inv.Used {
		return invitation.ErrInviteAlreadyUsed
	}

	s.sendEmail(inv, s.link(inv.Token))
	s.audit.Record(ctx, actor.ID, audit.ActionInviteResent, audit.EntityInvite, inv.ID, "")
	return nil
}

// Revoke implements invitation.InvitationService.
func (s *InvitationServiceImpl) Revoke(ctx context.Context, actor user.Actor, id string) error {
	if !actor.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}

	inv, err := s.getInvite(ctx, id)
	if err != nil {
		return err
	}
	if err := s.InviteRepository.MarkUsed(ctx, inv.ID); err != nil {
		return fmt.Errorf("failed to revoke invite: %w", err)
	}

	s.audit.Record(ctx, actor.ID, audit.ActionInviteRevoked, audit.EntityInvite, inv.ID, "")
	return nil
}

func (s *InvitationServiceImpl) getInvite(ctx context.Context, id string) (invitation.Invite, error) {
	if !validator.IsValidUUID(id) {
		return invitation.Invite{}, invitation.ErrInviteNotFound
	}
	inv, err := s.InviteRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, invitation.ErrInviteNotFound) {
			return invitation.Invite{}, err
		}
		return invitation.Invite{}, fmt.Errorf("failed to get invite: %w", err)
	}
	return inv, nil
}

func (s *InvitationServiceImpl) link(token string) string {
	return s.cfg.BaseURL + "?token=" + url.QueryEscape(token)
}

// sendEmail delivers the invitation in the background; failures are logged.
func (s *InvitationServiceImpl) sendEmail(inv invitation.Invite, link string) {
	s.dispatch(func() {
		if err := s.emailService.SendInvitation(inv.Email, link, inv.ExpiresAt); err != nil {
			slog.Warn("failed to send invitation email", "invite_id", inv.ID, "email", inv.Email, "error", err)
		}
	})
}
