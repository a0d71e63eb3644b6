package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleService interface {
	// GenerateState returns a random, URL-safe state value for one sign-in attempt.
	GenerateState() (string, error)
	// RedirectURL builds the consent screen URL carrying state.
	RedirectURL(state string) string
	// FetchUser exchanges the authorization code and reads the Google profile.
	FetchUser(ctx context.Context, code string) (GoogleInformation, error)
}

type GoogleServiceImpl struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleService(clientID string, clientSecret string, redirectURL string, scopes []string) GoogleService {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
	return &GoogleServiceImpl{config: config, userInfoURL: googleUserInfoURL}
}

type GoogleInformation struct {
	GoogleID      string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (g *GoogleServiceImpl) GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (g *GoogleServiceImpl) RedirectURL(state string) string {
	return g.config.AuthCodeURL(state)
}

func (g *GoogleServiceImpl) FetchUser(ctx context.Context, code string) (GoogleInformation, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return GoogleInformation{}, fmt.Errorf("exchange oauth code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return GoogleInformation{}, err
	}

	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return GoogleInformation{}, fmt.Errorf("fetch google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleInformation{}, fmt.Errorf("fetch google user info: unexpected status %d", resp.StatusCode)
	}

	var info GoogleInformation
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return GoogleInformation{}, fmt.Errorf("decode google user info: %w", err)
	}

	return info, nil
}
