package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin     = "admin"
	AdminTokenTTL = 24 * time.Hour
)

type AuthService interface {
	// Enabled reports whether admin tokens are required and can be issued.
	Enabled() bool
	Login(ctx context.Context, input LoginInput) (string, error)
	ParseToken(token string) (*AdminClaims, error)
}

type LoginInput struct {
	Password string `json:"password" validate:"required"`
}

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	secret       []byte
	passwordHash []byte
	now          func() time.Time
}

// NewAuthService returns a disabled service when secret is empty.
func NewAuthService(secret, passwordHash string) AuthService {
	return &authService{secret: []byte(secret), passwordHash: []byte(passwordHash), now: time.Now}
}

func (s *authService) Enabled() bool {
	return len(s.secret) > 0
}

func (s *authService) Login(ctx context.Context, input LoginInput) (string, error) {
	if !s.Enabled() || len(s.passwordHash) == 0 {
		return "", ErrAuthDisabled
	}
	if err := validateInput(input); err != nil {
		return "", err
	}

	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrAuthInvalidCredentials
		}
		return "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	now := s.now()
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   RoleAdmin,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AdminTokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}

func (s *authService) ParseToken(token string) (*AdminClaims, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrAuthInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, ErrAuthInvalidToken
	}
	return claims, nil
}
