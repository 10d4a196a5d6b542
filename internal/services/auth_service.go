package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
	"github.com/transitpulse/transit-assistant-backend/pkg/jwt"
)

// AuthService handles account registration and token issuance
type AuthService struct {
	users       repository.UserStore
	jwtService  *jwt.Service
	bcryptCost  int
	adminEmails map[string]struct{}
	logger      *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	users repository.UserStore,
	jwtService *jwt.Service,
	bcryptCost int,
	adminEmails []string,
	logger *logrus.Logger,
) *AuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		if email = normalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}

	return &AuthService{
		users:       users,
		jwtService:  jwtService,
		bcryptCost:  bcryptCost,
		adminEmails: admins,
		logger:      logger,
	}
}

// Register creates a passenger account, or an admin account for configured admin emails
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RolePassenger
	if _, ok := s.adminEmails[req.Email]; ok {
		role = models.RoleAdmin
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			return nil, models.ErrConflict("an account with this email already exists")
		}
		return nil, storeError(err, "user", "create user")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	return user, nil
}

// Login verifies the credentials and issues an access and refresh token
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return nil, models.ErrUnauthorized("invalid email or password")
		}
		return nil, storeError(err, "user", "get user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrUnauthorized("invalid email or password")
	}

	pair, err := s.jwtService.IssuePair(user.ID, user.Email, rolesOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")

	return &models.LoginResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExpiresAt.UTC(),
		User:         user,
	}, nil
}

// Refresh issues a new access token for a valid refresh token
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshRequest) (*models.LoginResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, models.ErrUnauthorized("invalid or expired refresh token")
	}

	// The account may have been removed or had its role changed since the token was issued
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return nil, models.ErrUnauthorized("account no longer exists")
		}
		return nil, storeError(err, "user", "get user")
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, rolesOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &models.LoginResponse{
		Token:     accessToken,
		ExpiresAt: time.Now().Add(s.jwtService.AccessTokenExpiry()).UTC(),
		User:      user,
	}, nil
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", "get user")
	}
	return user, nil
}

func rolesOf(user *models.User) []string {
	if user.IsAdmin() {
		return []string{models.RolePassenger, models.RoleAdmin}
	}
	return []string{user.Role}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
