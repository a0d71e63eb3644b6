package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

var ErrMalformedClaims = errors.New("token claims are malformed")

type Service interface {
	GenerateAccessToken(u user.User) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	now                   func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	expiration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration %q: %w", accessTokenExpirationTime, err)
	}
	return &JWTService{
		accessTokenExpiration: expiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                   time.Now,
	}, nil
}

func (j *JWTService) GenerateAccessToken(u user.User) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id": u.ID,
		"email":   u.Email,
		"name":    u.Name,
		"role":    string(u.Role),
		"type":    tokenTypeAccess,
		"exp":     expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// IsAccessToken reports whether claims were issued by GenerateAccessToken.
func IsAccessToken(claims map[string]interface{}) bool {
	tokenType, ok := claims["type"].(string)
	return ok && tokenType == tokenTypeAccess
}

// ActorFromClaims extracts the caller identity from verified token claims.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Actor{}, ErrMalformedClaims
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return user.Actor{}, ErrMalformedClaims
	}
	role := user.Role(roleStr)
	if !role.IsValid() {
		return user.Actor{}, ErrMalformedClaims
	}
	return user.Actor{ID: userID, Role: role}, nil
}
