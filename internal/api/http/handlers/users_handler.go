package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/municipal-helpdesk/internal/api/dto"
	"github.com/spec-kit/municipal-helpdesk/internal/auth"
	"github.com/spec-kit/municipal-helpdesk/internal/service"
	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

// UsersHandler exposes the administrative user directory.
type UsersHandler struct {
	directory *service.DirectoryService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(directory *service.DirectoryService) *UsersHandler {
	return &UsersHandler{directory: directory}
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Solicitud inválida", nil)
	}

	user, err := h.directory.CreateUser(c.UserContext(), auth.IdentityFromContext(c), service.UserCreateInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Area:     req.Area,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewUserResponse(user),
		"message": "Usuario creado exitosamente",
	})
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.directory.ListUsers(c.UserContext(), auth.IdentityFromContext(c), service.UserListFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserList(users)})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.directory.DeleteUser(c.UserContext(), auth.IdentityFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Usuario eliminado exitosamente"})
}

// ChangePassword handles PUT /users/:id/change-password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Solicitud inválida", nil)
	}
	err := h.directory.ChangePassword(c.UserContext(), auth.IdentityFromContext(c), c.Params("id"), service.PasswordChangeInput{
		NewPassword:   req.NewPassword,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Contraseña actualizada exitosamente"})
}
