package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	// RegisterViaInvite consumes an invite and creates the candidate account
	RegisterViaInvite(ctx context.Context, req RegisterViaInviteRequest) (TokenResponse, error)
	// LoginWithGoogle signs in an existing account by its verified Google email
	LoginWithGoogle(ctx context.Context, email string, verified bool) (TokenResponse, error)
}
