package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/serendigo/serendigo-backend-go/internal/models"
)

// ErrUnauthorized is returned for missing, malformed or expired tokens.
var ErrUnauthorized = errors.New("unauthorized")

const tokenIssuer = "serendigo-bff"

// Claims is the session token payload. BackendToken is relayed on calls
// the backend authorizes itself (guide history).
type Claims struct {
	UserID       string `json:"uid"`
	Name         string `json:"name,omitempty"`
	BackendToken string `json:"btk,omitempty"`
	jwt.RegisteredClaims
}

// AuthBackend is the external login and registration API.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Register(ctx context.Context, input models.RegisterInput) error
}

// AuthService relays credentials and issues session tokens.
type AuthService struct {
	backend AuthBackend
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewAuthService creates an auth service signing with secret.
func NewAuthService(backend AuthBackend, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		backend: backend,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Login checks credentials against the backend and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	result, err := s.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.Issue(result)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, UserID: result.UserID, Name: result.Name}, nil
}

// Register creates an account on the backend.
func (s *AuthService) Register(ctx context.Context, input models.RegisterInput) error {
	return s.backend.Register(ctx, input)
}

// Issue signs a token for a logged-in user.
func (s *AuthService) Issue(result *models.LoginResult) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:       result.UserID,
		Name:         result.Name,
		BackendToken: result.Token,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   result.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
func (s *AuthService) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
