package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/municipal-helpdesk/internal/auth"
	"github.com/spec-kit/municipal-helpdesk/internal/domain"
	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

func newAuthService(t *testing.T, users *MockUserRepository) (*AuthService, *auth.RedisRevocationStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := auth.NewRedisRevocationStore(client)

	svc := NewAuthService(AuthDependencies{
		UserRepo:   users,
		Tokens:     auth.NewTokenManager("test-secret", time.Hour),
		Revocation: store,
		Logger:     zap.NewNop(),
	})
	return svc, store
}

func TestLogin_Success(t *testing.T) {
	hash, err := auth.HashPassword("secreto1", 4)
	require.NoError(t, err)
	users := new(MockUserRepository)
	users.On("GetByUsername", mock.Anything, "jdoe").
		Return(&domain.User{ID: 2, Username: "jdoe", Role: domain.RoleNormal, Area: "Obras", PasswordHash: hash}, nil)
	svc, _ := newAuthService(t, users)

	result, err := svc.Login(context.Background(), " jdoe ", "secreto1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Session.Token)

	claims, err := svc.TokenManager().ParseToken(result.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: 2, Username: "jdoe", Role: domain.RoleNormal, Area: "Obras"}, *claims.Identity())
}

func TestLogin_SameErrorForUnknownUserAndBadPassword(t *testing.T) {
	hash, err := auth.HashPassword("secreto1", 4)
	require.NoError(t, err)
	users := new(MockUserRepository)
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, pgx.ErrNoRows)
	users.On("GetByUsername", mock.Anything, "jdoe").Return(&domain.User{ID: 2, Username: "jdoe", PasswordHash: hash}, nil)
	svc, _ := newAuthService(t, users)

	_, errUnknown := svc.Login(context.Background(), "ghost", "x")
	_, errBadPass := svc.Login(context.Background(), "jdoe", "x")

	a, b := apperrors.ToDomainError(errUnknown), apperrors.ToDomainError(errBadPass)
	assert.Equal(t, "UNAUTHORIZED", a.Code)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, "Usuario y/o contraseña incorrecta", a.Message)
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _ := newAuthService(t, new(MockUserRepository))
	_, err := svc.Login(context.Background(), "", "")
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, "Por favor, ingresa usuario y contraseña", domainErr.Message)
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, store := newAuthService(t, new(MockUserRepository))
	principal := &auth.Principal{
		Identity:  &domain.Identity{UserID: 2, Role: domain.RoleNormal},
		TokenID:   "jti-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	require.NoError(t, svc.Logout(context.Background(), principal))
	revoked, err := store.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.Equal(t, "UNAUTHORIZED", codeOf(t, svc.Logout(context.Background(), nil)))
}
