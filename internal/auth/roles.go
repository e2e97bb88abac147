package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal was attached by Authenticate.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFromContext(c) == nil {
			return apperrors.NewUnauthorized("No autenticado")
		}
		return c.Next()
	}
}

// RequireRole ensures the caller holds the given role.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := IdentityFromContext(c)
		if identity == nil {
			return apperrors.NewUnauthorized("No autenticado")
		}
		if identity.Role != role {
			return apperrors.NewForbidden("No autorizado")
		}
		return c.Next()
	}
}
