// Package auth issues and verifies the signed bearer tokens that guard the
// admin API.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing authentication token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// RoleAdmin is the only role allowed to impersonate other users
const RoleAdmin = "admin"

// Claims carried by an admin API token
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	// Actor is the id of the admin impersonating Subject, if any
	Actor string `json:"act,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token
func (c *Claims) UserID() string {
	return c.Subject
}

// Impersonated reports whether the token was issued on behalf of another user
func (c *Claims) Impersonated() bool {
	return c.Actor != ""
}

// Config holds the HS256 signing settings
type Config struct {
	Secret string        `koanf:"secret" validate:"required,min=16"`
	Issuer string        `koanf:"issuer" validate:"required"`
	TTL    time.Duration `koanf:"ttl" validate:"gt=0"`
}

// TokenService signs and verifies HS256 tokens
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service from config
func NewTokenService(cfg Config) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("secret key required for HS256")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token for subject. actor is empty unless an admin is
// impersonating subject.
func (s *TokenService) Issue(subject, email, role, actor string) (string, *Claims, error) {
	if subject == "" {
		return "", nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	now := s.now()
	claims := &Claims{
		Email: email,
		Role:  role,
		Actor: actor,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify parses a raw token, with or without the "Bearer " prefix
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	tokenString = stripBearer(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

func stripBearer(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "Bearer"
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		rest := header[len(prefix):]
		if rest == "" || rest[0] == ' ' {
			return strings.TrimSpace(rest)
		}
	}
	return header
}
