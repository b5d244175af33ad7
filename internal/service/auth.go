package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aidar/certgen/internal/domain"
)

// Claims represents JWT claims
type Claims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// AuthService handles operator authentication and JWT operations
type AuthService struct {
	apiKey    string
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(apiKey, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		apiKey:    apiKey,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// Login checks the operator API key and issues a token
func (s *AuthService) Login(_ context.Context, operator, apiKey string) (string, error) {
	// Empty configured key disables login entirely
	if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(s.apiKey), []byte(apiKey)) != 1 {
		return "", domain.ErrUnauthorized
	}
	return s.IssueToken(operator)
}

// IssueToken generates a signed token for an operator
func (s *AuthService) IssueToken(operator string) (string, error) {
	claims := &Claims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Expiry returns the lifetime of issued tokens
func (s *AuthService) Expiry() time.Duration {
	return s.jwtExpiry
}

// ValidateToken validates a JWT token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
