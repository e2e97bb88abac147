package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/municipal-helpdesk/internal/auth"
	"github.com/spec-kit/municipal-helpdesk/internal/config"
	"github.com/spec-kit/municipal-helpdesk/internal/domain"
	"github.com/spec-kit/municipal-helpdesk/internal/repository"
	"github.com/spec-kit/municipal-helpdesk/internal/validation"
	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

// DirectoryService manages user accounts on behalf of administrators.
type DirectoryService struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// UserCreateInput describes a new account.
type UserCreateInput struct {
	FullName string `json:"fullName" validate:"notblank,max=120"`
	Username string `json:"username" validate:"notblank,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Area     string `json:"area" validate:"notblank,max=120"`
	Role     string `json:"role" validate:"required"`
}

// UserListFilter narrows the directory listing. Role defaults to NORMAL; "todos" lists every role.
type UserListFilter struct {
	Search string
	Role   string
}

// PasswordChangeInput carries an administrator-initiated password reset.
type PasswordChangeInput struct {
	NewPassword   string `json:"newPassword" validate:"required,min=6,max=72"`
	AdminPassword string `json:"adminPassword" validate:"required"`
}

// NewDirectoryService builds the service.
func NewDirectoryService(cfg config.Config, users repository.UserRepository, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{users: users, bcryptCost: cfg.Auth.BcryptCost, logger: logger}
}

// CreateUser registers a new account. Username and email are unique regardless of case.
func (s *DirectoryService) CreateUser(ctx context.Context, caller *domain.Identity, input UserCreateInput) (*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.create(ctx, input)
}

func (s *DirectoryService) create(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.Area = strings.TrimSpace(input.Area)

	fields := validation.Struct(input)
	role, ok := domain.ParseRole(input.Role)
	if !ok && input.Role != "" {
		fields = append(fields, apperrors.FieldError{Field: "role", Message: "El campo rol debe ser uno de: ADMIN, NORMAL"})
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError("Datos inválidos", fields)
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, input.Username, input.Email)
	switch {
	case err == nil:
		return nil, duplicateUserError(existing, input)
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
		Area:         input.Area,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, apperrors.NewConflict("El nombre de usuario ya está en uso", map[string]any{"field": "username"})
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperrors.NewConflict("El correo electrónico ya está registrado", map[string]any{"field": "email"})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, nil
}

func duplicateUserError(existing *domain.User, input UserCreateInput) error {
	if strings.EqualFold(existing.Username, input.Username) {
		return apperrors.NewConflict("El nombre de usuario ya está en uso", map[string]any{"field": "username"})
	}
	return apperrors.NewConflict("El correo electrónico ya está registrado", map[string]any{"field": "email"})
}

// ListUsers searches the directory, newest accounts first.
func (s *DirectoryService) ListUsers(ctx context.Context, caller *domain.Identity, filter UserListFilter) ([]domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	repoFilter := repository.UserFilter{Search: strings.TrimSpace(filter.Search)}
	rawRole := strings.TrimSpace(filter.Role)
	switch {
	case rawRole == "":
		role := domain.RoleNormal
		repoFilter.Role = &role
	case strings.EqualFold(rawRole, "todos"):
	default:
		role, ok := domain.ParseRole(rawRole)
		if !ok {
			return nil, apperrors.NewFieldValidationError("Rol inválido",
				[]apperrors.FieldError{{Field: "role", Message: "El campo rol debe ser uno de: ADMIN, NORMAL"}})
		}
		repoFilter.Role = &role
	}

	users, err := s.users.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// DeleteUser removes an account by its numeric id.
func (s *DirectoryService) DeleteUser(ctx context.Context, caller *domain.Identity, rawID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	id, err := parseUserID(rawID)
	if err != nil {
		return err
	}
	if id == caller.UserID {
		return apperrors.NewConflict("No puedes eliminar tu propia cuenta", nil)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NewNotFound("Usuario no encontrado", map[string]any{"user_id": id})
		case errors.Is(err, repository.ErrUserHasTickets):
			return apperrors.NewConflict("El usuario tiene tickets registrados y no puede eliminarse", map[string]any{"user_id": id})
		}
		return apperrors.MapError(err)
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id), zap.Int64("actor_id", caller.UserID))
	return nil
}

// ChangePassword sets a new password for the target account after re-checking the acting
// administrator's own password.
func (s *DirectoryService) ChangePassword(ctx context.Context, caller *domain.Identity, rawTargetID string, input PasswordChangeInput) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	id, err := parseUserID(rawTargetID)
	if err != nil {
		return err
	}
	if err := validation.Check(input, "Todos los campos son requeridos"); err != nil {
		return err
	}

	admin, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("Sesión inválida")
		}
		return apperrors.MapError(err)
	}
	if admin.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("Se requiere rol de administrador")
	}
	if err := auth.ComparePassword(admin.PasswordHash, input.AdminPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperrors.NewForbidden("Contraseña de administrador incorrecta")
		}
		return apperrors.NewInternalError(err)
	}

	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Usuario no encontrado", map[string]any{"user_id": id})
		}
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.NewPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Usuario no encontrado", map[string]any{"user_id": id})
		}
		return apperrors.MapError(err)
	}
	s.logger.Info("password changed", zap.Int64("user_id", id), zap.Int64("actor_id", caller.UserID))
	return nil
}

// EnsureBootstrapAdmin creates the configured administrator when it does not exist yet.
func (s *DirectoryService) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if !cfg.Enabled() {
		return nil
	}
	_, err := s.users.GetByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	_, err = s.create(ctx, UserCreateInput{
		FullName: cfg.AdminFullName,
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Area:     cfg.AdminArea,
		Role:     string(domain.RoleAdmin),
	})
	return err
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewFieldValidationError("ID inválido",
			[]apperrors.FieldError{{Field: "id", Message: "El identificador debe ser numérico"}})
	}
	return id, nil
}
