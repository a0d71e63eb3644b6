package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/oauth"
)

const oauthStateCookie = "oauth_state"

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	RegisterViaInvite(w http.ResponseWriter, r *http.Request)
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService   auth.AuthService
	googleService oauth.GoogleService
	frontendURL   string
}

// NewAuthHandler builds the auth endpoints. googleService may be nil when
// Google sign-in is not configured.
func NewAuthHandler(authService auth.AuthService, googleService oauth.GoogleService, frontendURL string) AuthHandler {
	return &AuthHandlerImpl{
		authService:   authService,
		googleService: googleService,
		frontendURL:   frontendURL,
	}
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Error("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("User logged in successfully", "user_id", tokenResponse.User.ID)
	response.SuccessWithMessage(w, "User logged in successfully", tokenResponse)
}

// RegisterViaInvite implements AuthHandler.
func (a *AuthHandlerImpl) RegisterViaInvite(w http.ResponseWriter, r *http.Request) {
	var registerReq auth.RegisterViaInviteRequest

	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		slog.Error("RegisterViaInvite decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := a.authService.RegisterViaInvite(r.Context(), registerReq)
	if err != nil {
		slog.Error("RegisterViaInvite service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("User registered via invite", "user_id", tokenResponse.User.ID)
	response.Created(w, "User registered successfully", tokenResponse)
}

// LoginWithGoogle implements AuthHandler.
func (a *AuthHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	if a.googleService == nil {
		response.HandleError(w, auth.ErrOAuthNotConfigured)
		return
	}

	state, err := a.googleService.GenerateState()
	if err != nil {
		slog.Error("Failed to generate oauth state", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/v1/auth/oauth/google",
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, a.googleService.RedirectURL(state), http.StatusTemporaryRedirect)
}

// OAuthCallbackGoogle implements AuthHandler.
func (a *AuthHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	if a.googleService == nil {
		response.HandleError(w, auth.ErrOAuthNotConfigured)
		return
	}

	redirectWithError := func(errorMsg string) {
		redirectURL := fmt.Sprintf("%s/auth/callback/google?error=%s", a.frontendURL, url.QueryEscape(errorMsg))
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}

	if errorValue := r.URL.Query().Get("error"); errorValue != "" {
		slog.Error("Error in OAuth callback", "error", errorValue)
		redirectWithError(errorValue)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" {
		slog.Error("State cookie not found", "error", err)
		redirectWithError("state_cookie_not_found")
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		slog.Error("State mismatch", "error", auth.ErrOAuthStateMismatch)
		redirectWithError("state_mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		redirectWithError("code_empty")
		return
	}

	userGoogle, err := a.googleService.FetchUser(r.Context(), code)
	if err != nil {
		slog.Error("Failed to fetch Google profile", "error", err)
		redirectWithError("user_verification_failed")
		return
	}

	tokenResponse, err := a.authService.LoginWithGoogle(r.Context(), userGoogle.Email, userGoogle.VerifiedEmail)
	if err != nil {
		slog.Error("Failed to login with Google", "error", err)
		redirectWithError("login_failed")
		return
	}

	slog.Info("User logged in successfully via Google OAuth", "user_id", tokenResponse.User.ID)

	redirectURL := fmt.Sprintf("%s/auth/callback/google?access_token=%s&expires_at=%d",
		a.frontendURL,
		url.QueryEscape(tokenResponse.AccessToken),
		tokenResponse.ExpiresAt,
	)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}
