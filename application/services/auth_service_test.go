package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roadmaps-backend/infrastructure/messaging/eventbridge"
	"roadmaps-backend/infrastructure/persistence/memory"
	"roadmaps-backend/pkg/auth"
	apperrors "roadmaps-backend/pkg/errors"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()

	generator, err := auth.NewJWTGenerator(auth.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "roadmaps-backend",
		Audience:  []string{"roadmaps-web"},
	})
	require.NoError(t, err)

	return NewAuthService(memory.NewUserRepository(), generator, eventbridge.NopBus{}, zap.NewNop())
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, "Ada", "Ada@Example.com", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, signedUp.Token)
	assert.Equal(t, "ada@example.com", signedUp.User.Email, "email is normalized")
	assert.Empty(t, signedUp.User.FavoriteRoadmaps)

	loggedIn, err := svc.Login(ctx, "ada@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, loggedIn.User.ID, "login resolves the same account")
	assert.NotEmpty(t, loggedIn.Token)
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "correct horse battery")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Imposter", "ADA@example.com", "another password")
	assert.True(t, apperrors.IsConflict(err))
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "correct horse battery")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ada@example.com", "wrong password")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestAuthService_TokenCarriesSubject(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	result, err := svc.Signup(ctx, "Ada", "ada@example.com", "correct horse battery")
	require.NoError(t, err)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "roadmaps-backend",
		Audience:  []string{"roadmaps-web"},
	})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.False(t, claims.Admin)
}
