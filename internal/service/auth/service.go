package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/invitation"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	invitation.InviteRepository
	jwt.Service
	audit audit.Recorder
	now   func() time.Time
}

func NewAuthService(tx database.Transactor, userRepository user.UserRepository, inviteRepository invitation.InviteRepository, jwtService jwt.Service, recorder audit.Recorder) auth.AuthService {
	return &AuthServiceImpl{
		tx:               tx,
		UserRepository:   userRepository,
		InviteRepository: inviteRepository,
		Service:          jwtService,
		audit:            recorder,
		now:              time.Now,
	}
}

// HashPassword hashes a plain-text password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, validator.NormalizeEmail(loginReq.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == "" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueToken(userData)
}

// RegisterViaInvite implements auth.AuthService.
func (a *AuthServiceImpl) RegisterViaInvite(ctx context.Context, req auth.RegisterViaInviteRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var (
		created user.User
		inv     invitation.Invite
	)
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// Locked until commit so the same token cannot register twice.
		inv, err = a.InviteRepository.GetByTokenForUpdate(txCtx, req.Token)
		if err != nil {
			return err
		}
		if err := inv.CanBeAccepted(a.now()); err != nil {
			return err
		}

		exists, err := a.UserRepository.ExistsByEmail(txCtx, inv.Email)
		if err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
		if exists {
			return invitation.ErrEmailAlreadyRegistered
		}

		created, err = a.UserRepository.Create(txCtx, user.User{
			Name:         req.Name,
			Email:        inv.Email,
			PasswordHash: hashed,
			Role:         user.RoleCandidate,
		})
		if err != nil {
			if errors.Is(err, user.ErrUserEmailExists) {
				return invitation.ErrEmailAlreadyRegistered
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		if err := a.InviteRepository.MarkUsed(txCtx, inv.ID); err != nil {
			return fmt.Errorf("failed to mark invite used: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	a.audit.Record(ctx, created.ID, audit.ActionInviteAccepted, audit.EntityInvite, inv.ID, "User registered: "+created.Email)

	return a.issueToken(created)
}

// LoginWithGoogle implements auth.AuthService. Accounts are invite-only, so a
// verified Google email must already belong to a user.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, email string, verified bool) (auth.TokenResponse, error) {
	if !verified {
		return auth.TokenResponse{}, auth.ErrOAuthEmailUnverified
	}

	userData, err := a.UserRepository.GetByEmail(ctx, validator.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrNoAccountForEmail
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return a.issueToken(userData)
}

func (a *AuthServiceImpl) issueToken(u user.User) (auth.TokenResponse, error) {
	token, expiresAt, err := a.Service.GenerateAccessToken(u)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	return auth.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user.NewUserResponse(u),
	}, nil
}
