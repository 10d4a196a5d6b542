// Package jwt issues and verifies the HS256 access and refresh tokens used by
// the API. Access and refresh tokens are signed with different secrets and
// carry a token_type claim so one can never stand in for the other.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the iss claim of every token this service signs
const Issuer = "transit-assistant"

// TokenType represents the type of JWT token
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var (
	// ErrExpiredToken is returned for a well-formed token past its exp claim
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidToken covers bad signatures, malformed tokens and wrong token types
	ErrInvalidToken = errors.New("invalid token")
)

// Claims represents the JWT claims structure
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles,omitempty"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is issued on login
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// Service handles JWT operations
type Service struct {
	accessSecret       []byte
	refreshSecret      []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	parser             *jwt.Parser
	now                func() time.Time
}

// NewService creates a new JWT service
func NewService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *Service {
	s := &Service{
		accessSecret:       []byte(accessSecret),
		refreshSecret:      []byte(refreshSecret),
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
		now:                time.Now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s
}

// AccessTokenExpiry returns the lifetime of newly issued access tokens
func (s *Service) AccessTokenExpiry() time.Duration {
	return s.accessTokenExpiry
}

// GenerateAccessToken generates a new access token
func (s *Service) GenerateAccessToken(userID uuid.UUID, email string, roles []string) (string, error) {
	token, _, err := s.sign(userID, email, roles, AccessToken)
	return token, err
}

// GenerateRefreshToken generates a new refresh token. Refresh tokens carry no
// roles; they are reloaded from the user record on refresh.
func (s *Service) GenerateRefreshToken(userID uuid.UUID, email string) (string, error) {
	token, _, err := s.sign(userID, email, nil, RefreshToken)
	return token, err
}

// IssuePair generates an access and a refresh token for one user
func (s *Service) IssuePair(userID uuid.UUID, email string, roles []string) (*TokenPair, error) {
	access, expiresAt, err := s.sign(userID, email, roles, AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.sign(userID, email, nil, RefreshToken)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: expiresAt,
	}, nil
}

func (s *Service) sign(userID uuid.UUID, email string, roles []string, typ TokenType) (string, time.Time, error) {
	secret, expiry := s.accessSecret, s.accessTokenExpiry
	if typ == RefreshToken {
		secret, expiry = s.refreshSecret, s.refreshTokenExpiry
	}

	now := s.now()
	expiresAt := now.Add(expiry)
	claims := Claims{
		UserID:    userID,
		Email:     email,
		Roles:     roles,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
			Subject:   userID.String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken validates and parses an access token
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret, AccessToken)
}

// ValidateRefreshToken validates and parses a refresh token
func (s *Service) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret, RefreshToken)
}

// validate returns an error wrapping ErrExpiredToken or ErrInvalidToken
func (s *Service) validate(tokenString string, secret []byte, expected TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.TokenType != expected {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, expected, claims.TokenType)
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}

	return claims, nil
}
