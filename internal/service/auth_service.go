package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/municipal-helpdesk/internal/auth"
	"github.com/spec-kit/municipal-helpdesk/internal/domain"
	"github.com/spec-kit/municipal-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

const invalidCredentialsMessage = "Usuario y/o contraseña incorrecta"

// AuthService coordinates login and logout.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	revoked  auth.RevocationStore
	logger   *zap.Logger
	now      func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Revocation auth.RevocationStore
	Logger     *zap.Logger
}

// LoginResult is a successful sign-in.
type LoginResult struct {
	User    *domain.User
	Session auth.Session
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    deps.UserRepo,
		tokenMgr: deps.Tokens,
		revoked:  deps.Revocation,
		logger:   logger,
		now:      time.Now,
	}
}

// TokenManager exposes the token issuer.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login verifies a username and password and issues a session token. Unknown users and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		var fields []apperrors.FieldError
		if username == "" {
			fields = append(fields, apperrors.FieldError{Field: "username", Message: "El campo usuario es obligatorio"})
		}
		if password == "" {
			fields = append(fields, apperrors.FieldError{Field: "password", Message: "El campo contraseña es obligatorio"})
		}
		return nil, apperrors.NewFieldValidationError("Por favor, ingresa usuario y contraseña", fields)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("login rejected", zap.String("username", username), zap.String("reason", "unknown_user"))
			return nil, apperrors.NewUnauthorized(invalidCredentialsMessage)
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login rejected", zap.String("username", username), zap.String("reason", "bad_password"))
			return nil, apperrors.NewUnauthorized(invalidCredentialsMessage)
		}
		return nil, apperrors.NewInternalError(err)
	}

	session, err := s.tokenMgr.GenerateToken(user.Identity())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("login succeeded", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &LoginResult{User: user, Session: session}, nil
}

// Logout revokes the caller's token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil || principal.Identity == nil {
		return apperrors.NewUnauthorized("No autenticado")
	}
	if s.revoked == nil || principal.TokenID == "" {
		return nil
	}
	ttl := principal.ExpiresAt.Sub(s.now())
	if err := s.revoked.Revoke(ctx, principal.TokenID, ttl); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("logout", zap.Int64("user_id", principal.Identity.UserID))
	return nil
}
