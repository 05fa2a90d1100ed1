package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"roadmaps-backend/application/ports"
	"roadmaps-backend/domain/events"
	"roadmaps-backend/domain/user"
	"roadmaps-backend/pkg/auth"
	apperrors "roadmaps-backend/pkg/errors"
)

const (
	signupTokenTTL = 24 * time.Hour
	loginTokenTTL  = 30 * 24 * time.Hour

	bcryptCost = bcrypt.DefaultCost
)

// AuthResult carries the authenticated user and a signed token for it.
type AuthResult struct {
	User  *user.User
	Token string
}

// AuthService implements signup and login on top of bcrypt password
// hashes and HS256 tokens.
type AuthService struct {
	users     ports.UserRepository
	generator *auth.JWTGenerator
	eventBus  ports.EventBus
	logger    *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	users ports.UserRepository,
	generator *auth.JWTGenerator,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		generator: generator,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Signup registers a new account. Emails are unique; a duplicate yields
// a Conflict error without changing stored state.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflictError("email already registered")
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	u, err := user.New(name, email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.generator.GenerateToken(u.ID, u.Email, u.Admin, signupTokenTTL)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to sign token", err)
	}

	if s.eventBus != nil {
		event := events.NewUserRegistered(u.ID, u.Email)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish event",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("user registered", zap.String("userID", u.ID))
	return &AuthResult{User: u, Token: token}, nil
}

// Login verifies the password and issues a long-lived token. Unknown
// emails and wrong passwords return the same Unauthorized error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.generator.GenerateToken(u.ID, u.Email, u.Admin, loginTokenTTL)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to sign token", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
